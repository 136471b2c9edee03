package http

// httpStubSession is a minimal core.Session for seeding server state in
// tests; delivered lines are discarded.
type httpStubSession struct {
	id   string
	name string
}

func newHTTPStubSession(name string) *httpStubSession {
	return &httpStubSession{id: "conn-" + name, name: name}
}

func (s *httpStubSession) ID() string               { return s.id }
func (s *httpStubSession) Username() string         { return s.name }
func (s *httpStubSession) Deliver(line string) error { return nil }
