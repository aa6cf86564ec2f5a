package screen

import (
	"fmt"
	"strings"
	"sync"
)

// Form is the state of a mutation form: whether it is open, the values the
// user typed and the last error.
type Form struct {
	Open   bool
	Values map[string]string
	Err    string
}

// Value returns a submitted value
func (f Form) Value(name string) string {
	return f.Values[name]
}

// FormStore keeps forms per session and form key
type FormStore struct {
	mu    sync.Mutex
	forms map[string]map[string]Form
}

// NewFormStore creates an empty form store
func NewFormStore() *FormStore {
	return &FormStore{forms: make(map[string]map[string]Form)}
}

// Get returns the form state. Closed forms are reported as the zero Form.
func (s *FormStore) Get(sid, key string) Form {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.forms[sid][key]
}

// Open opens an empty form unless it is already open
func (s *FormStore) Open(sid, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forms[sid][key].Open {
		return
	}
	s.set(sid, key, Form{Open: true, Values: map[string]string{}})
}

// Fail keeps the form open with the submitted values and the error
func (s *FormStore) Fail(sid, key string, values map[string]string, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(sid, key, Form{Open: true, Values: values, Err: msg})
}

// Close closes the form and discards its values
func (s *FormStore) Close(sid, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.forms[sid], key)
}

// Drop forgets every form of a session
func (s *FormStore) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.forms, sid)
}

func (s *FormStore) set(sid, key string, f Form) {
	perSession, ok := s.forms[sid]
	if !ok {
		perSession = make(map[string]Form)
		s.forms[sid] = perSession
	}
	perSession[key] = f
}

// RequiredError lists the required fields that are empty
type RequiredError struct {
	Fields []string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("required fields are missing: %s", strings.Join(e.Fields, ", "))
}

// Required checks that the named values are non-empty after trimming
func Required(values map[string]string, names ...string) error {
	var missing []string
	for _, name := range names {
		if strings.TrimSpace(values[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &RequiredError{Fields: missing}
	}
	return nil
}
