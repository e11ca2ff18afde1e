package world

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
)

const (
	diskOpSet   byte = 1
	diskOpReset byte = 2

	// op, x, y, z (int32 each), id (uint16)
	diskRecordSize = 1 + 4*3 + 2
)

var errTruncatedRecord = errors.New("truncated overlay record")

// ErrCoordinateRange is returned for edits whose coordinates do not fit the
// int32 fields of a disk record.
var ErrCoordinateRange = errors.New("coordinate outside the int32 record range")

func fitsRecord(pos BlockCoord) bool {
	for _, v := range [3]int{pos.X, pos.Y, pos.Z} {
		if int64(v) < math.MinInt32 || int64(v) > math.MaxInt32 {
			return false
		}
	}
	return true
}

// DiskStore appends every edit to a single record log. The latest record for a
// position wins when the log is replayed.
type DiskStore struct {
	mu    sync.Mutex
	file  *os.File
	edits map[BlockCoord]BlockID
}

// NewDiskStore opens (or creates) the record log at path and indexes it.
func NewDiskStore(path string) (*DiskStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create overlay directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open overlay file: %w", err)
	}
	store := &DiskStore{
		file:  f,
		edits: make(map[BlockCoord]BlockID),
	}
	if err := store.loadIndex(); err != nil {
		f.Close()
		return nil, err
	}
	return store, nil
}

func (s *DiskStore) loadIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind overlay file: %w", err)
	}
	r := bufio.NewReader(s.file)
	record := make([]byte, diskRecordSize)
	var offset int64
	for {
		if _, err := io.ReadFull(r, record); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("read overlay record at %d: %w", offset, errTruncatedRecord)
			}
			return fmt.Errorf("read overlay record: %w", err)
		}
		switch record[0] {
		case diskOpSet:
			edit := decodeRecord(record)
			s.edits[edit.Pos] = edit.ID
		case diskOpReset:
			s.edits = make(map[BlockCoord]BlockID)
		default:
			return fmt.Errorf("overlay record at %d: unknown op %d", offset, record[0])
		}
		offset += diskRecordSize
	}
	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek overlay end: %w", err)
	}
	return nil
}

func encodeRecord(op byte, edit Edit) []byte {
	record := make([]byte, diskRecordSize)
	record[0] = op
	binary.LittleEndian.PutUint32(record[1:5], uint32(int32(edit.Pos.X)))
	binary.LittleEndian.PutUint32(record[5:9], uint32(int32(edit.Pos.Y)))
	binary.LittleEndian.PutUint32(record[9:13], uint32(int32(edit.Pos.Z)))
	binary.LittleEndian.PutUint16(record[13:15], uint16(edit.ID))
	return record
}

func decodeRecord(record []byte) Edit {
	return Edit{
		Pos: BlockCoord{
			X: int(int32(binary.LittleEndian.Uint32(record[1:5]))),
			Y: int(int32(binary.LittleEndian.Uint32(record[5:9]))),
			Z: int(int32(binary.LittleEndian.Uint32(record[9:13]))),
		},
		ID: BlockID(binary.LittleEndian.Uint16(record[13:15])),
	}
}

func (s *DiskStore) append(record []byte) error {
	if _, err := s.file.Write(record); err != nil {
		return fmt.Errorf("write overlay record: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync overlay file: %w", err)
	}
	return nil
}

func (s *DiskStore) Put(edit Edit) error {
	if !fitsRecord(edit.Pos) {
		return fmt.Errorf("overlay edit %s: %w", edit.Pos, ErrCoordinateRange)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.append(encodeRecord(diskOpSet, edit)); err != nil {
		return err
	}
	s.edits[edit.Pos] = edit.ID
	return nil
}

// Reset records that every earlier edit is void.
func (s *DiskStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.append(encodeRecord(diskOpReset, Edit{})); err != nil {
		return err
	}
	s.edits = make(map[BlockCoord]BlockID)
	return nil
}

func (s *DiskStore) LoadAll(fn func(Edit) bool) error {
	s.mu.Lock()
	edits := make([]Edit, 0, len(s.edits))
	for pos, id := range s.edits {
		edits = append(edits, Edit{Pos: pos, ID: id})
	}
	s.mu.Unlock()

	sortEdits(edits)
	for _, edit := range edits {
		if !fn(edit) {
			break
		}
	}
	return nil
}

func (s *DiskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
