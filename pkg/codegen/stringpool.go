package codegen

import "fmt"

// stringPool dedups string-literal payloads to a single assembler label
// each, shared across the whole translation unit and flushed once into
// .data at the end of code generation.
type stringPool struct {
	labels map[string]string // decoded payload -> label
	order  []string          // insertion order, for deterministic .data output
	seq    int
}

func newStringPool() *stringPool {
	return &stringPool{labels: make(map[string]string)}
}

// intern returns the label for payload, creating one on first sight.
func (p *stringPool) intern(payload string) string {
	if label, ok := p.labels[payload]; ok {
		return label
	}
	p.seq++
	label := fmt.Sprintf(".LC%d", p.seq)
	p.labels[payload] = label
	p.order = append(p.order, payload)
	return label
}

// escape renders payload for use between the double quotes of an .asciz
// operand (the caller adds the quotes), escaping the handful of bytes the
// assembler's string syntax requires.
func escape(payload string) string {
	out := make([]byte, 0, len(payload)+2)
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		switch c {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\t':
			out = append(out, '\\', 't')
		case '\r':
			out = append(out, '\\', 'r')
		case 0:
			out = append(out, '\\', '0')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
