package storage

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/OCharnyshevich/voxel-terrain/internal/mesh"
	"github.com/OCharnyshevich/voxel-terrain/internal/world"
	"github.com/OCharnyshevich/voxel-terrain/internal/world/gen"
)

const manifestName = "manifest.json"

// Storage is a mesh sink that exports every accepted chunk mesh as an OBJ
// file under <dir>/chunks, optionally zstd-compressed.
type Storage struct {
	dir       string
	chunkSize int
	compress  bool
	enc       *zstd.Encoder
	log       *slog.Logger

	mu     sync.Mutex
	chunks map[world.ChunkCoord]ChunkEntry
}

// New creates a Storage rooted at dir, creating subdirectories as needed.
func New(dir string, chunkSize int, compress bool, log *slog.Logger) (*Storage, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size %d: %w", chunkSize, world.ErrInvalidConfiguration)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	chunkDir := filepath.Join(dir, "chunks")
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", chunkDir, err)
	}

	s := &Storage{
		dir:       dir,
		chunkSize: chunkSize,
		compress:  compress,
		log:       log,
		chunks:    make(map[world.ChunkCoord]ChunkEntry),
	}
	if compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		s.enc = enc
	}
	return s, nil
}

// Close releases the compressor.
func (s *Storage) Close() error {
	if s.enc != nil {
		return s.enc.Close()
	}
	return nil
}

// FileName returns the chunk file name for coord, relative to the chunks
// directory.
func (s *Storage) FileName(coord world.ChunkCoord) string {
	name := fmt.Sprintf("%d_%d_%d.obj", coord.X, coord.Y, coord.Z)
	if s.compress {
		name += ".zst"
	}
	return name
}

func (s *Storage) chunkPath(coord world.ChunkCoord) string {
	return filepath.Join(s.dir, "chunks", s.FileName(coord))
}

// Accept writes the mesh of coord atomically, replacing any earlier export.
// Empty meshes are recorded but leave no file behind.
func (s *Storage) Accept(ctx context.Context, coord world.ChunkCoord, buf *mesh.Buffers) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := ChunkEntry{
		X: coord.X, Y: coord.Y, Z: coord.Z,
		Faces:    buf.Faces(),
		Vertices: len(buf.Vertices),
		Wide:     buf.Wide,
	}

	if !buf.Empty() {
		var b bytes.Buffer
		if err := WriteOBJ(&b, coord, s.chunkSize, buf); err != nil {
			return err
		}
		data := b.Bytes()
		if s.compress {
			data = s.enc.EncodeAll(data, make([]byte, 0, len(data)/4))
		}
		if err := atomicWrite(s.chunkPath(coord), data); err != nil {
			return fmt.Errorf("save chunk %s: %w", coord, err)
		}
		entry.File = s.FileName(coord)
	} else if err := os.Remove(s.chunkPath(coord)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear chunk %s: %w", coord, err)
	}

	s.mu.Lock()
	s.chunks[coord] = entry
	s.mu.Unlock()
	return nil
}

// Drop removes the exported mesh of coord, if any.
func (s *Storage) Drop(coord world.ChunkCoord) {
	s.mu.Lock()
	delete(s.chunks, coord)
	s.mu.Unlock()

	if err := os.Remove(s.chunkPath(coord)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Error("remove chunk mesh", "coord", coord, "error", err)
	}
}

// Len returns the number of chunks currently exported.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// SaveManifest writes manifest.json atomically, listing every exported chunk
// in coordinate order together with the biome that produced them.
func (s *Storage) SaveManifest(biome gen.Biome) error {
	s.mu.Lock()
	m := Manifest{
		Biome:      biome,
		Compressed: s.compress,
		Chunks:     make([]ChunkEntry, 0, len(s.chunks)),
	}
	for _, e := range s.chunks {
		m.Chunks = append(m.Chunks, e)
	}
	s.mu.Unlock()

	slices.SortFunc(m.Chunks, func(a, b ChunkEntry) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Z, b.Z)
	})
	for _, e := range m.Chunks {
		m.Faces += int64(e.Faces)
	}

	path := filepath.Join(s.dir, manifestName)
	if err := atomicWriteJSON(path, &m); err != nil {
		return err
	}
	s.log.Info("saved manifest", "path", path, "chunks", len(m.Chunks), "faces", m.Faces)
	return nil
}

// LoadManifest reads the manifest.json under dir.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// atomicWriteJSON marshals v to JSON and writes it atomically.
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	return atomicWrite(path, data)
}

// atomicWrite writes data using a temp file + rename.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
