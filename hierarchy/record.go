package hierarchy

import (
	"fmt"

	"github.com/fstwave/fst/errs"
	"github.com/fstwave/fst/varint"
)

const (
	tagAttrBegin  = 252
	tagAttrEnd    = 253
	tagScopeOpen  = 254
	tagScopeClose = 255

	maxNameLen = 512
)

// cursor is a small forward-only reader over an in-memory record
// stream, mirroring the offset-tracking style used by section.Parse and
// geometry.Parse rather than introducing a bytes.Reader for what is a
// single linear pass with no backward seeks.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) byte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, fmt.Errorf("%w: truncated hierarchy record", errs.ErrMalformed)
	}
	b := c.data[c.pos]
	c.pos++

	return b, nil
}

func (c *cursor) cstring() (string, error) {
	limit := c.pos + maxNameLen + 1
	if limit > len(c.data) {
		limit = len(c.data)
	}

	for i := c.pos; i < limit; i++ {
		if c.data[i] == 0 {
			s := string(c.data[c.pos:i])
			c.pos = i + 1

			return s, nil
		}
	}

	return "", fmt.Errorf("%w: hierarchy name exceeds %d bytes", errs.ErrUnsupportedFormat, maxNameLen)
}

func (c *cursor) varint() (uint64, error) {
	v, n, err := varint.DecodeVarint(c.data[c.pos:])
	if err != nil {
		return 0, err
	}
	c.pos += n

	return v, nil
}

func (c *cursor) eof() bool { return c.pos >= len(c.data) }

// parseRecords runs the tag-prefixed record loop of spec.md §4.5. The
// scope opened by the first record hangs under a single virtual root;
// parsing stops when the scope-close matching that first scope-open is
// consumed.
func parseRecords(data []byte) (*Tree, error) {
	c := &cursor{data: data}

	root := &Scope{}
	stack := []*Scope{root}
	nextVarID := 0
	first := true

	for {
		if c.eof() {
			return nil, fmt.Errorf("%w: hierarchy stream ended before root scope closed", errs.ErrMalformed)
		}

		tag, err := c.byte()
		if err != nil {
			return nil, err
		}

		if first {
			if tag != tagScopeOpen {
				return nil, fmt.Errorf("%w: first hierarchy record is not a scope-open", errs.ErrMalformed)
			}
			first = false
		}

		switch tag {
		case tagAttrBegin:
			typ, err := c.byte()
			if err != nil {
				return nil, err
			}
			subtype, err := c.byte()
			if err != nil {
				return nil, err
			}
			name, err := c.cstring()
			if err != nil {
				return nil, err
			}
			arg, err := c.varint()
			if err != nil {
				return nil, err
			}

			cur := stack[len(stack)-1]
			cur.Attrs = append(cur.Attrs, Attr{Type: typ, Subtype: subtype, Name: name, Arg: arg})

		case tagAttrEnd:
			// No payload and no tree-structural effect: attribute
			// records are recorded flat per scope, not nested.

		case tagScopeOpen:
			scopeType, err := c.byte()
			if err != nil {
				return nil, err
			}
			name, err := c.cstring()
			if err != nil {
				return nil, err
			}
			component, err := c.cstring()
			if err != nil {
				return nil, err
			}

			child := &Scope{Type: scopeType, Name: name, Component: component}
			cur := stack[len(stack)-1]
			cur.Scopes = append(cur.Scopes, child)
			stack = append(stack, child)

		case tagScopeClose:
			stack = stack[:len(stack)-1]
			if len(stack) == 1 {
				return &Tree{Root: root, NumVars: nextVarID}, nil
			}

		default:
			direction, err := c.byte()
			if err != nil {
				return nil, err
			}
			name, err := c.cstring()
			if err != nil {
				return nil, err
			}
			bits, err := c.varint()
			if err != nil {
				return nil, err
			}
			alias, err := c.varint()
			if err != nil {
				return nil, err
			}

			var varID int
			isAlias := alias != 0
			if isAlias {
				varID = int(alias) - 1
				if varID < 0 || varID >= nextVarID {
					return nil, fmt.Errorf("%w: hierarchy alias %d refers to unallocated VarId", errs.ErrMalformed, alias)
				}
			} else {
				varID = nextVarID
				nextVarID++
			}

			cur := stack[len(stack)-1]
			cur.Vars = append(cur.Vars, Var{
				Type:      tag,
				Direction: direction,
				Name:      name,
				Bits:      bits,
				VarID:     varID,
				IsAlias:   isAlias,
			})
		}
	}
}
