package runtime

// Scope is an ordered name->value association list. It models both a
// frame's variable list and a Variable's instance field list — the
// source walks both the same way: linear scan in insertion order,
// first match wins, and an update in place if the name already
// exists.
type Scope struct {
	names  []string
	values []*Object
}

func NewScope() *Scope {
	return &Scope{}
}

// Get returns the first binding for name, in insertion order.
func (s *Scope) Get(name string) (*Object, bool) {
	for i, n := range s.names {
		if n == name {
			return s.values[i], true
		}
	}
	return nil, false
}

// Names returns the bound names in insertion order, for debug
// display only.
func (s *Scope) Names() []string {
	return s.names
}

// Set updates the first existing binding for name, or appends a new
// one if none exists.
func (s *Scope) Set(name string, v *Object) {
	for i, n := range s.names {
		if n == name {
			s.values[i] = v
			return
		}
	}
	s.names = append(s.names, name)
	s.values = append(s.values, v)
}

// LoadVar scans the global scope first, then the current frame scope,
// returning the first match. This order is load-bearing and
// deliberately not "fixed" to shadow globals with locals.
func LoadVar(global, frame *Scope, name string) (*Object, bool) {
	if v, ok := global.Get(name); ok {
		return v, true
	}
	return frame.Get(name)
}

// StoreVar updates the first existing entry found by LoadVar's search
// order (globals first); if none exists, append a new binding to the
// frame scope. Assigning a name that collides with a global therefore
// silently mutates the global — this is intentional.
func StoreVar(global, frame *Scope, name string, v *Object) {
	if _, ok := global.Get(name); ok {
		global.Set(name, v)
		return
	}
	if _, ok := frame.Get(name); ok {
		frame.Set(name, v)
		return
	}
	frame.Set(name, v)
}
