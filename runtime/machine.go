package runtime

import (
	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/internal/chiperr"
)

// Machine is the single interpreter context: Program Table, Constant
// Pool (via Program), globals, the LOAD_CONST cache, the empty-return
// singleton, and heap statistics. It is passed by reference rather
// than kept as package-level statics, so the engine can run multiple
// images in one process.
type Machine struct {
	Program     *bytecode.Program
	Globals     *Scope
	EmptyReturn *Object
	Heap        *Heap

	constCache map[int]*Object
}

// NewMachine loads globals (one static singleton Variable per class,
// keyed by class name) and prepares the shared caches.
func NewMachine(prog *bytecode.Program) (*Machine, error) {
	m := &Machine{
		Program:     prog,
		Globals:     NewScope(),
		EmptyReturn: NewEmptyReturn(),
		Heap:        NewHeap(),
		constCache:  make(map[int]*Object),
	}
	for _, class := range prog.Classes {
		v, err := m.newVariableForClass(class)
		if err != nil {
			return nil, err
		}
		m.Globals.Set(class.Name, v)
	}
	return m, nil
}

// NewVariable implements NEW's new_object(Variable, name): look up the
// class, fatal if unknown, then eagerly bind one Function per method
// to the new Object.
func (m *Machine) NewVariable(className string) (*Object, error) {
	class := m.Program.GetClass(className)
	if class == nil {
		return nil, chiperr.New(chiperr.UnknownClass, "unknown class %q", className)
	}
	return m.newVariableForClass(class)
}

func (m *Machine) newVariableForClass(class *bytecode.Class) (*Object, error) {
	obj := &Object{Kind: KindVariable, Name: class.Name, Vars: NewScope()}
	m.Heap.RecordAlloc(KindVariable)
	for _, method := range class.Methods {
		// Bound is a non-owning back-reference to obj: it must never
		// be allowed to keep obj alive on its own, since obj and fn
		// form a cycle.
		fn := &Object{Kind: KindFunction, Name: method.Name, Bound: obj, Method: method}
		m.Heap.RecordAlloc(KindFunction)
		obj.Vars.Set(method.Name, fn)
	}
	return obj, nil
}

// NewArray implements NEWARRAY: size slots initialized to the
// empty-return singleton, element class name elemClass, and a
// "count" pseudo-field equal to size.
func (m *Machine) NewArray(elemClass string, size int) (*Object, error) {
	if size < 0 {
		return nil, chiperr.New(chiperr.IndexOutOfRange, "negative array size %d", size)
	}
	slots := make([]*Object, size)
	for i := range slots {
		slots[i] = m.EmptyReturn
	}
	arr := &Object{Kind: KindArray, Name: elemClass, Slots: slots, Vars: NewScope()}
	arr.Vars.Set("count", NewNumber(float64(size)))
	m.Heap.RecordAlloc(KindArray)
	return arr, nil
}

// LoadConst implements LOAD_CONST's lazy-materialize-and-cache
// contract: the first LOAD_CONST k builds a character-Array Object
// from K[k] and every subsequent LOAD_CONST k returns the same Object
// (identity, not structural equality).
//
// This Array is a distinct representation from the String objects
// syscalls 0/6 return: its Slots hold one Number per byte, reusing
// the Array machinery, and carries no Str payload. Syscalls 11/12
// (strlen, char-at) read either form through Object.Text: a String
// Object's Str field directly, or this Array's Slots decoded one byte
// per slot. The two representations are kept separate rather than
// unified into one.
func (m *Machine) LoadConst(index int) (*Object, error) {
	if cached, ok := m.constCache[index]; ok {
		return cached, nil
	}
	raw, err := m.Program.Pool.Get(index)
	if err != nil {
		return nil, chiperr.New(chiperr.LoadError, "LOAD_CONST %d: %v", index, err)
	}
	slots := make([]*Object, len(raw))
	for i := 0; i < len(raw); i++ {
		slots[i] = NewNumber(float64(raw[i]))
	}
	arr := &Object{Kind: KindArray, Name: "char", Slots: slots, Vars: NewScope()}
	arr.Vars.Set("count", NewNumber(float64(len(raw))))
	m.Heap.RecordAlloc(KindArray)
	m.constCache[index] = arr
	return arr, nil
}
