// Package demo reads the Source 2 demo container: the file header and the
// command frames that wrap every protobuf message in a replay.
package demo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dotabuff/manta/dota"
	"github.com/golang/snappy"
	"google.golang.org/protobuf/proto"
)

const (
	HeaderSize  = 16
	bufferSize  = 2 * 1024 * 1024
	pregameTick = 0xFFFFFFFF
)

var magic = []byte("PBDEMS2\x00")

var (
	ErrBadMagic     = errors.New("not a Source 2 demo file")
	ErrVarIntLength = errors.New("varint exceeds 5 bytes")
)

// Header is the fixed-size prefix of every demo file.
type Header struct {
	FileInfoOffset    int32
	SpawnGroupsOffset int32
}

func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("reading demo header: %w", ErrBadMagic)
		}
		return Header{}, fmt.Errorf("reading demo header: %w", err)
	}
	if !bytes.Equal(buf[:len(magic)], magic) {
		return Header{}, fmt.Errorf("unexpected magic %q: %w", buf[:len(magic)], ErrBadMagic)
	}
	return Header{
		FileInfoOffset:    int32(binary.LittleEndian.Uint32(buf[8:12])),
		SpawnGroupsOffset: int32(binary.LittleEndian.Uint32(buf[12:16])),
	}, nil
}

// Frame is one command read from the container, with its payload already
// decompressed.
type Frame struct {
	Command    dota.EDemoCommands
	Tick       uint32
	Compressed bool
	Data       []byte
}

// FileHeader decodes a DEM_FileHeader frame.
func (f *Frame) FileHeader() (*dota.CDemoFileHeader, error) {
	if f.Command != dota.EDemoCommands_DEM_FileHeader {
		return nil, fmt.Errorf("frame is %s, not a file header", f.Command)
	}
	var h dota.CDemoFileHeader
	if err := proto.Unmarshal(f.Data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse CDemoFileHeader: %w", err)
	}
	return &h, nil
}

// Reader walks the frames following the header. It does not read the header
// itself.
type Reader struct {
	reader *bufio.Reader
	buffer []byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: bufio.NewReaderSize(r, bufferSize),
		buffer: make([]byte, 0, 64*1024),
	}
}

// Next returns the next frame. It returns io.EOF only when the stream ends on
// a frame boundary. The returned Data is valid until the following call.
func (dr *Reader) Next() (*Frame, error) {
	command, err := dr.readVarUInt32()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, fmt.Errorf("error reading command: %w", err)
	}

	tick, err := dr.readVarUInt32()
	if err != nil {
		return nil, fmt.Errorf("error reading tick: %w", noEOF(err))
	}

	size, err := dr.readVarUInt32()
	if err != nil {
		return nil, fmt.Errorf("error reading size: %w", noEOF(err))
	}

	if tick == pregameTick {
		tick = 0
	}

	isCompressed := command&uint32(dota.EDemoCommands_DEM_IsCompressed) != 0
	msgType := command &^ uint32(dota.EDemoCommands_DEM_IsCompressed)

	if int(size) > cap(dr.buffer) {
		dr.buffer = make([]byte, size)
	}
	data := dr.buffer[:size]
	if _, err := io.ReadFull(dr.reader, data); err != nil {
		return nil, fmt.Errorf("error reading message data: %w", noEOF(err))
	}

	if isCompressed {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("error decompressing data: %w", err)
		}
	}

	return &Frame{
		Command:    dota.EDemoCommands(msgType),
		Tick:       tick,
		Compressed: isCompressed,
		Data:       data,
	}, nil
}

func (dr *Reader) readVarUInt32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := dr.reader.ReadByte()
		if err != nil {
			if shift > 0 {
				return 0, noEOF(err)
			}
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 35 {
			return 0, ErrVarIntLength
		}
	}
	return result, nil
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
