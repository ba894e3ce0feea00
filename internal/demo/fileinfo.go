package demo

import (
	"fmt"
	"io"

	"github.com/dotabuff/manta/dota"
	"google.golang.org/protobuf/proto"
)

// TotalTicks reads the CDemoFileInfo frame the header points at and returns
// its playback tick count. The read position of rs is left after that frame.
func TotalTicks(rs io.ReadSeeker) (int32, error) {
	info, err := ReadFileInfo(rs)
	if err != nil {
		return 0, err
	}
	return info.GetPlaybackTicks(), nil
}

func ReadFileInfo(rs io.ReadSeeker) (*dota.CDemoFileInfo, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	header, err := ReadHeader(rs)
	if err != nil {
		return nil, err
	}
	if header.FileInfoOffset < HeaderSize {
		return nil, fmt.Errorf("file info offset %d: %w", header.FileInfoOffset, ErrBadMagic)
	}
	if _, err := rs.Seek(int64(header.FileInfoOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to file info: %w", err)
	}

	frame, err := NewReader(rs).Next()
	if err != nil {
		return nil, fmt.Errorf("reading file info frame: %w", noEOF(err))
	}
	if frame.Command != dota.EDemoCommands_DEM_FileInfo {
		return nil, fmt.Errorf("expected %s at offset %d, got %s",
			dota.EDemoCommands_DEM_FileInfo, header.FileInfoOffset, frame.Command)
	}

	var info dota.CDemoFileInfo
	if err := proto.Unmarshal(frame.Data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse CDemoFileInfo: %w", err)
	}
	return &info, nil
}
