package resp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

type Type byte

const (
	SimpleString Type = '+'
	Error        Type = '-'
	Integer      Type = ':'
	BulkString   Type = '$'
	Array        Type = '*'
)

const (
	maxBulkLength  = 512 << 20
	maxArrayLength = 1 << 20
	readChunkSize  = 4096
	minValueLength = len("+\r\n")
)

var (
	ErrInvalidType   = errors.New("invalid RESP type")
	ErrInvalidFormat = errors.New("invalid RESP format")
	// ErrIncomplete reports that the buffer ends before the value does.
	ErrIncomplete = errors.New("incomplete RESP value")
)

type Value struct {
	Type  Type
	Str   string
	Int   int64
	Array []Value
	Null  bool
}

// ParseBytes decodes one value from the front of buf and returns it with the
// number of bytes it occupied. It returns ErrIncomplete when buf holds only a
// prefix of a value; buf is never retained.
func ParseBytes(buf []byte) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}

	line, n, err := readLine(buf[1:])
	if err != nil {
		return Value{}, 0, err
	}
	n++

	switch Type(buf[0]) {
	case SimpleString:
		return Value{Type: SimpleString, Str: string(line)}, n, nil
	case Error:
		return Value{Type: Error, Str: string(line)}, n, nil
	case Integer:
		num, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return Value{}, 0, fmt.Errorf("%w: invalid integer", ErrInvalidFormat)
		}
		return Value{Type: Integer, Int: num}, n, nil
	case BulkString:
		return parseBulkString(buf, line, n)
	case Array:
		return parseArray(buf, line, n)
	default:
		return Value{}, 0, fmt.Errorf("%w: %c", ErrInvalidType, buf[0])
	}
}

func parseBulkString(buf, header []byte, n int) (Value, int, error) {
	length, err := strconv.Atoi(string(header))
	if err != nil || length < -1 || length > maxBulkLength {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk string length", ErrInvalidFormat)
	}

	if length == -1 {
		return Value{Type: BulkString, Null: true}, n, nil
	}

	end := n + length + 2
	if len(buf) < end {
		return Value{}, 0, ErrIncomplete
	}
	if buf[end-2] != '\r' || buf[end-1] != '\n' {
		return Value{}, 0, fmt.Errorf("%w: missing CRLF after bulk string", ErrInvalidFormat)
	}

	return Value{Type: BulkString, Str: string(buf[n : n+length])}, end, nil
}

func parseArray(buf, header []byte, n int) (Value, int, error) {
	count, err := strconv.Atoi(string(header))
	if err != nil || count < -1 || count > maxArrayLength {
		return Value{}, 0, fmt.Errorf("%w: invalid array length", ErrInvalidFormat)
	}

	if count == -1 {
		return Value{Type: Array, Null: true}, n, nil
	}

	// An element takes at least three bytes, so the header alone never
	// reserves more than the buffered input could hold.
	array := make([]Value, 0, min(count, (len(buf)-n)/minValueLength))
	for range count {
		val, used, err := ParseBytes(buf[n:])
		if err != nil {
			return Value{}, 0, err
		}
		array = append(array, val)
		n += used
	}

	return Value{Type: Array, Array: array}, n, nil
}

// readLine returns the bytes before the first CRLF and the length including it.
func readLine(buf []byte) ([]byte, int, error) {
	i := bytes.IndexByte(buf, '\n')
	if i < 0 {
		return nil, 0, ErrIncomplete
	}
	if i == 0 || buf[i-1] != '\r' {
		return nil, 0, fmt.Errorf("%w: missing CRLF", ErrInvalidFormat)
	}
	return buf[:i-1], i + 1, nil
}

// Parser decodes a stream of values from a reader.
type Parser struct {
	reader io.Reader
	buf    []byte
}

func NewParser(r io.Reader) *Parser {
	return &Parser{reader: r}
}

func (p *Parser) Parse() (Value, error) {
	for {
		v, n, err := ParseBytes(p.buf)
		if err == nil {
			p.buf = p.buf[n:]
			return v, nil
		}
		if !errors.Is(err, ErrIncomplete) {
			return Value{}, err
		}

		if err := p.fill(); err != nil {
			if err == io.EOF && len(p.buf) > 0 {
				return Value{}, io.ErrUnexpectedEOF
			}
			return Value{}, err
		}
	}
}

func (p *Parser) fill() error {
	chunk := make([]byte, readChunkSize)
	n, err := p.reader.Read(chunk)
	p.buf = append(p.buf, chunk[:n]...)
	if n > 0 {
		return nil
	}
	if err == nil {
		return io.ErrNoProgress
	}
	return err
}
