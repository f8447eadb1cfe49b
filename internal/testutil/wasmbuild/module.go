// Package wasmbuild assembles tiny wasm modules for tests. Every function
// type uses only i32 parameters and results.
package wasmbuild

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10
	sectionData     = 11

	kindFunc   = 0x00
	kindMemory = 0x02

	valI32   = 0x7f
	funcType = 0x60
)

// Instructions.
const (
	OpUnreachable = 0x00
	OpDrop        = 0x1a
	OpEnd         = 0x0b
)

// I32Const pushes v.
func I32Const(v int32) []byte {
	return appendS32([]byte{0x41}, v)
}

// LocalGet pushes parameter or local i.
func LocalGet(i uint32) []byte {
	return appendU32([]byte{0x20}, i)
}

// Call calls function idx.
func Call(idx uint32) []byte {
	return appendU32([]byte{0x10}, idx)
}

// Code concatenates instruction sequences.
func Code(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

type signature struct {
	params, results int
}

type imported struct {
	module, name string
	sig          uint32
}

type function struct {
	export string
	body   []byte
	sig    uint32
}

type segment struct {
	data   []byte
	offset uint32
}

// Module is a module under construction. Imports must be added before any
// function so that function indexes stay stable.
type Module struct {
	sigs    []signature
	imports []imported
	funcs   []function
	data    []segment
	pages   uint32
}

// New starts an empty module.
func New() *Module {
	return &Module{}
}

func (m *Module) sig(params, results int) uint32 {
	for i, s := range m.sigs {
		if s.params == params && s.results == results {
			return uint32(i)
		}
	}
	m.sigs = append(m.sigs, signature{params, results})
	return uint32(len(m.sigs) - 1)
}

// Import adds a function import and returns its function index.
func (m *Module) Import(module, name string, params, results int) uint32 {
	if len(m.funcs) > 0 {
		panic("wasmbuild: imports must precede functions")
	}
	m.imports = append(m.imports, imported{module: module, name: name, sig: m.sig(params, results)})
	return uint32(len(m.imports) - 1)
}

// Func adds a function with the given body (without the trailing end) and
// exports it under export when non-empty. It returns the function index.
func (m *Module) Func(export string, params, results int, body ...byte) uint32 {
	m.funcs = append(m.funcs, function{export: export, body: body, sig: m.sig(params, results)})
	return uint32(len(m.imports) + len(m.funcs) - 1)
}

// Memory adds a memory of the given size in 64KiB pages, exported as
// "memory".
func (m *Module) Memory(pages uint32) {
	m.pages = pages
}

// Data places b at offset in memory.
func (m *Module) Data(offset uint32, b []byte) {
	m.data = append(m.data, segment{data: b, offset: offset})
}

// Bytes encodes the module.
func (m *Module) Bytes() []byte {
	out := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

	if len(m.sigs) > 0 {
		sec := appendU32(nil, uint32(len(m.sigs)))
		for _, s := range m.sigs {
			sec = append(sec, funcType)
			sec = appendI32s(sec, s.params)
			sec = appendI32s(sec, s.results)
		}
		out = appendSection(out, sectionType, sec)
	}

	if len(m.imports) > 0 {
		sec := appendU32(nil, uint32(len(m.imports)))
		for _, imp := range m.imports {
			sec = appendName(sec, imp.module)
			sec = appendName(sec, imp.name)
			sec = append(sec, kindFunc)
			sec = appendU32(sec, imp.sig)
		}
		out = appendSection(out, sectionImport, sec)
	}

	if len(m.funcs) > 0 {
		sec := appendU32(nil, uint32(len(m.funcs)))
		for _, f := range m.funcs {
			sec = appendU32(sec, f.sig)
		}
		out = appendSection(out, sectionFunction, sec)
	}

	if m.pages > 0 {
		sec := appendU32(nil, 1)
		sec = append(sec, 0x00) // min only
		sec = appendU32(sec, m.pages)
		out = appendSection(out, sectionMemory, sec)
	}

	var exports [][]byte
	if m.pages > 0 {
		e := appendName(nil, "memory")
		e = append(e, kindMemory)
		exports = append(exports, appendU32(e, 0))
	}
	for i, f := range m.funcs {
		if f.export == "" {
			continue
		}
		e := appendName(nil, f.export)
		e = append(e, kindFunc)
		exports = append(exports, appendU32(e, uint32(len(m.imports)+i)))
	}
	if len(exports) > 0 {
		sec := appendU32(nil, uint32(len(exports)))
		for _, e := range exports {
			sec = append(sec, e...)
		}
		out = appendSection(out, sectionExport, sec)
	}

	if len(m.funcs) > 0 {
		sec := appendU32(nil, uint32(len(m.funcs)))
		for _, f := range m.funcs {
			body := append([]byte{0x00}, f.body...) // no locals
			body = append(body, OpEnd)
			sec = appendVec(sec, body)
		}
		out = appendSection(out, sectionCode, sec)
	}

	if len(m.data) > 0 {
		sec := appendU32(nil, uint32(len(m.data)))
		for _, d := range m.data {
			sec = append(sec, 0x00) // active, memory 0
			sec = append(sec, I32Const(int32(d.offset))...)
			sec = append(sec, OpEnd)
			sec = appendVec(sec, d.data)
		}
		out = appendSection(out, sectionData, sec)
	}

	return out
}

func appendI32s(b []byte, n int) []byte {
	b = appendU32(b, uint32(n))
	for i := 0; i < n; i++ {
		b = append(b, valI32)
	}
	return b
}

func appendSection(b []byte, id byte, payload []byte) []byte {
	b = append(b, id)
	return appendVec(b, payload)
}
