package wal

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/golang/snappy"
)

// FileWal is a file-backed Wal. Each record is key_len|key|value_len|value
// (uvarint-prefixed lengths), snappy-compressed as a whole, then framed
// on disk with its own uvarint size prefix so Replay can find record
// boundaries without decompressing the rest of the file.
type FileWal struct {
	mu   sync.Mutex
	file *os.File
}

// Create opens path for appending, creating it if necessary.
func Create(path string) (*FileWal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileWal{file: f}, nil
}

// Append encodes and writes one record.
func (w *FileWal) Append(key, value []byte) error {
	record := encodeRecord(key, value)
	compressed := snappy.Encode(nil, record)

	w.mu.Lock()
	defer w.mu.Unlock()
	return writeVarintFramed(w.file, compressed)
}

// Sync flushes the log to stable storage.
func (w *FileWal) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

// Close releases the underlying file handle.
func (w *FileWal) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// File exposes the underlying *os.File, mirroring the teacher's
// pattern of naming a sealed memtable's WAL file for deletion once its
// SST has been durably written.
func (w *FileWal) File() *os.File { return w.file }

// Replay reads every record from path in append order. It is meant to
// be called against a closed (or at least flushed) log, typically
// during engine startup to recover a memtable that was never sealed.
func Replay(path string) ([][2][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var records [][2][]byte
	for {
		compressed, err := readVarintFramed(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		record, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, err
		}

		key, value, err := decodeRecord(record)
		if err != nil {
			return nil, err
		}
		records = append(records, [2][]byte{key, value})
	}
	return records, nil
}

func encodeRecord(key, value []byte) []byte {
	var lenBuf [binary.MaxVarintLen64]byte
	out := make([]byte, 0, len(key)+len(value)+2*binary.MaxVarintLen64)

	n := binary.PutUvarint(lenBuf[:], uint64(len(key)))
	out = append(out, lenBuf[:n]...)
	out = append(out, key...)

	n = binary.PutUvarint(lenBuf[:], uint64(len(value)))
	out = append(out, lenBuf[:n]...)
	out = append(out, value...)

	return out
}

func decodeRecord(record []byte) (key, value []byte, err error) {
	r := newByteReader(record)

	keyLen, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, nil, err
	}
	key, err = r.readN(int(keyLen))
	if err != nil {
		return nil, nil, err
	}

	valueLen, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, nil, err
	}
	value, err = r.readN(int(valueLen))
	if err != nil {
		return nil, nil, err
	}

	return key, value, nil
}

func writeVarintFramed(w io.Writer, raw []byte) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(raw)))
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	_, err := w.Write(raw)
	return err
}

func readVarintFramed(r *bufio.Reader) ([]byte, error) {
	l, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, l)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// byteReader adapts a []byte to io.ByteReader so binary.ReadUvarint
// can walk it directly, tracking position for the following readN.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (r *byteReader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) readN(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	out := append([]byte(nil), r.data[r.pos:r.pos+n]...)
	r.pos += n
	return out, nil
}
