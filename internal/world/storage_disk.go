package world

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const (
	diskOpDelete byte = 0
	diskOpSet    byte = 1
	diskOpHeader byte = 2

	diskHeaderSize = 9
)

type diskRecordMeta struct {
	offset int64
	size   uint32
}

// diskMapStorage is an append-only log of gob encoded rows. Each entry has a
// 9 byte header (op, uint32 LE row, uint32 LE payload size); the latest entry
// per row wins and the in-memory index is rebuilt by replaying the log.
type diskMapStorage struct {
	file    *os.File
	mu      sync.RWMutex
	records map[int]diskRecordMeta
	header  *diskRecordMeta
}

// OpenDiskStorage opens or creates a snapshot log at path.
func OpenDiskStorage(path string) (MapStorage, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	return newDiskMapStorage(path)
}

func newDiskMapStorage(path string) (*diskMapStorage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	storage := &diskMapStorage{
		file:    f,
		records: make(map[int]diskRecordMeta),
	}
	if err := storage.loadIndex(); err != nil {
		f.Close()
		return nil, err
	}
	return storage, nil
}

func (s *diskMapStorage) loadIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind snapshot file: %w", err)
	}

	header := make([]byte, diskHeaderSize)
	var offset int64
	for {
		if _, err := io.ReadFull(s.file, header); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("truncated snapshot header: %w", err)
			}
			return fmt.Errorf("read snapshot header: %w", err)
		}
		op := header[0]
		index := int(binary.LittleEndian.Uint32(header[1:5]))
		size := binary.LittleEndian.Uint32(header[5:9])
		recordOffset := offset
		offset += int64(len(header)) + int64(size)

		if _, err := s.file.Seek(int64(size), io.SeekCurrent); err != nil {
			return fmt.Errorf("seek past payload: %w", err)
		}
		switch op {
		case diskOpSet:
			s.records[index] = diskRecordMeta{offset: recordOffset, size: size}
		case diskOpHeader:
			s.header = &diskRecordMeta{offset: recordOffset, size: size}
		default:
			delete(s.records, index)
		}
	}

	return nil
}

func (s *diskMapStorage) readPayload(meta diskRecordMeta, want byte) ([]byte, bool, error) {
	header := make([]byte, diskHeaderSize)
	if _, err := s.file.ReadAt(header, meta.offset); err != nil {
		return nil, false, fmt.Errorf("read header at %d: %w", meta.offset, err)
	}
	if header[0] != want {
		return nil, false, nil
	}
	size := binary.LittleEndian.Uint32(header[5:9])
	payload := make([]byte, size)
	if _, err := s.file.ReadAt(payload, meta.offset+int64(len(header))); err != nil {
		return nil, false, fmt.Errorf("read payload: %w", err)
	}
	return payload, true, nil
}

func (s *diskMapStorage) LoadRow(y int) ([]TileRecord, bool, error) {
	s.mu.RLock()
	meta, ok := s.records[y]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	payload, ok, err := s.readPayload(meta, diskOpSet)
	if err != nil || !ok {
		return nil, false, err
	}
	var records []TileRecord
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&records); err != nil {
		return nil, false, fmt.Errorf("decode row: %w", err)
	}
	return records, true, nil
}

func (s *diskMapStorage) LoadHeader() (Header, bool, error) {
	s.mu.RLock()
	meta := s.header
	s.mu.RUnlock()
	if meta == nil {
		return Header{}, false, nil
	}
	payload, ok, err := s.readPayload(*meta, diskOpHeader)
	if err != nil || !ok {
		return Header{}, false, err
	}
	var header Header
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&header); err != nil {
		return Header{}, false, fmt.Errorf("decode header: %w", err)
	}
	return header, true, nil
}

func (s *diskMapStorage) SaveRow(y int, records []TileRecord) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(records); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	meta, err := s.append(diskOpSet, y, payload.Bytes())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[y] = meta
	s.mu.Unlock()
	return nil
}

func (s *diskMapStorage) SaveHeader(header Header) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(header); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	meta, err := s.append(diskOpHeader, 0, payload.Bytes())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.header = &meta
	s.mu.Unlock()
	return nil
}

func (s *diskMapStorage) append(op byte, index int, payload []byte) (diskRecordMeta, error) {
	header := make([]byte, diskHeaderSize)
	header[0] = op
	binary.LittleEndian.PutUint32(header[1:5], uint32(index))
	binary.LittleEndian.PutUint32(header[5:9], uint32(len(payload)))

	s.mu.Lock()
	defer s.mu.Unlock()

	offset, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return diskRecordMeta{}, fmt.Errorf("seek snapshot end: %w", err)
	}
	if _, err := s.file.Write(header); err != nil {
		return diskRecordMeta{}, fmt.Errorf("write header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := s.file.Write(payload); err != nil {
			return diskRecordMeta{}, fmt.Errorf("write payload: %w", err)
		}
	}
	if err := s.file.Sync(); err != nil {
		return diskRecordMeta{}, fmt.Errorf("sync snapshot file: %w", err)
	}
	return diskRecordMeta{offset: offset, size: uint32(len(payload))}, nil
}

func (s *diskMapStorage) Delete(y int) error {
	if _, err := s.append(diskOpDelete, y, nil); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.records, y)
	s.mu.Unlock()
	return nil
}

func (s *diskMapStorage) ForEach(fn func(y int, records []TileRecord) bool) error {
	s.mu.RLock()
	rows := make([]int, 0, len(s.records))
	for y := range s.records {
		rows = append(rows, y)
	}
	s.mu.RUnlock()

	sort.Ints(rows)
	for _, y := range rows {
		records, ok, err := s.LoadRow(y)
		if err != nil {
			log.Printf("disk map storage load row %d: %v", y, err)
			continue
		}
		if !ok {
			continue
		}
		if !fn(y, records) {
			break
		}
	}
	return nil
}

func (s *diskMapStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
