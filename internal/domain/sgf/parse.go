package sgf

import (
	"fmt"
	"strings"

	"goban/internal/errors"
)

type parser struct {
	src string
	pos int
}

// Parse reads the first game tree of an SGF collection.
func Parse(text string) (*SGF, error) {
	p := &parser{src: text}
	p.skipSpace()
	if !p.consume('(') {
		return nil, p.fail("expected '('")
	}
	tree, err := p.parseTree()
	if err != nil {
		return nil, err
	}
	if len(tree.Nodes) == 0 {
		return nil, p.fail("empty game tree")
	}
	return &SGF{Root: tree}, nil
}

// parseTree reads a tree whose opening parenthesis was already consumed.
func (p *parser) parseTree() (*GameTree, error) {
	tree := &GameTree{}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.fail("unexpected end of input")
		}
		switch p.peek() {
		case ';':
			p.pos++
			node, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			if len(tree.Children) > 0 {
				return nil, p.fail("node after variation")
			}
			tree.Nodes = append(tree.Nodes, node)
		case '(':
			p.pos++
			child, err := p.parseTree()
			if err != nil {
				return nil, err
			}
			tree.Children = append(tree.Children, child)
		case ')':
			p.pos++
			return tree, nil
		default:
			return nil, p.fail(fmt.Sprintf("unexpected %q", p.peek()))
		}
	}
}

func (p *parser) parseNode() (Node, error) {
	node := Node{Properties: map[string][]string{}}
	for {
		p.skipSpace()
		start := p.pos
		for !p.eof() && isIdentChar(p.peek()) {
			p.pos++
		}
		if start == p.pos {
			return node, nil
		}
		// FF[1] allowed lowercase letters inside identifiers, only capitals count
		key := strings.Map(func(r rune) rune {
			if r >= 'A' && r <= 'Z' {
				return r
			}
			return -1
		}, p.src[start:p.pos])

		p.skipSpace()
		if p.eof() || p.peek() != '[' {
			return node, p.fail("property " + key + " without value")
		}
		for {
			p.skipSpace()
			if p.eof() || p.peek() != '[' {
				break
			}
			p.pos++
			value, err := p.parseValue()
			if err != nil {
				return node, err
			}
			node.Properties[key] = append(node.Properties[key], value)
		}
	}
}

func (p *parser) parseValue() (string, error) {
	var sb strings.Builder
	for !p.eof() {
		ch := p.src[p.pos]
		p.pos++
		switch ch {
		case '\\':
			if p.eof() {
				return "", p.fail("dangling escape")
			}
			next := p.src[p.pos]
			p.pos++
			// escaped line break is a soft break
			if next == '\n' || next == '\r' {
				continue
			}
			sb.WriteByte(next)
		case ']':
			return sb.String(), nil
		default:
			sb.WriteByte(ch)
		}
	}
	return "", p.fail("unterminated value")
}

func isIdentChar(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) consume(b byte) bool {
	if !p.eof() && p.src[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *parser) peek() byte { return p.src[p.pos] }
func (p *parser) eof() bool  { return p.pos >= len(p.src) }

func (p *parser) fail(msg string) error {
	return fmt.Errorf("%w: %s at offset %d", errors.ErrMalformedSgf, msg, p.pos)
}
