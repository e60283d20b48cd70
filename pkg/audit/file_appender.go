package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// FileAppender - запись в файл с ротацией.
// Старые файлы сжимаются zstd: audit.log.1.zst, audit.log.2.zst, ...
type FileAppender struct {
	mu          sync.Mutex
	file        *os.File
	filePath    string
	maxSize     int64 // Максимальный размер файла в байтах
	maxBackups  int   // Количество backup файлов
	currentSize int64
	level       Level
	formatJSON  bool
}

// FileAppenderConfig - конфигурация file appender
type FileAppenderConfig struct {
	FilePath string

	// MaxSize - в мегабайтах; MaxBytes, если задан, имеет приоритет
	MaxSize  int64
	MaxBytes int64

	MaxBackups int
	Level      Level
	FormatJSON bool
}

// NewFileAppender - создать file appender
func NewFileAppender(config FileAppenderConfig) (*FileAppender, error) {
	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	maxSize := config.MaxBytes
	if maxSize <= 0 {
		mb := config.MaxSize
		if mb <= 0 {
			mb = 100 // По умолчанию 100 MB
		}
		maxSize = mb * 1024 * 1024
	}

	maxBackups := config.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 5
	}

	return &FileAppender{
		file:        file,
		filePath:    config.FilePath,
		maxSize:     maxSize,
		maxBackups:  maxBackups,
		currentSize: fileInfo.Size(),
		level:       config.Level,
		formatJSON:  config.FormatJSON,
	}, nil
}

// Append - записать entry в файл
func (fa *FileAppender) Append(ctx context.Context, entry *Entry) error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	filtered := entry.FilterByLevel(fa.level)

	var data []byte
	if fa.formatJSON {
		var err error
		data, err = filtered.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		data = append(data, '\n')
	} else {
		data = []byte(filtered.String() + "\n")
	}

	if fa.currentSize > 0 && fa.currentSize+int64(len(data)) > fa.maxSize {
		if err := fa.rotate(); err != nil {
			return fmt.Errorf("failed to rotate file: %w", err)
		}
	}

	n, err := fa.file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	fa.currentSize += int64(n)
	return nil
}

// BackupPath returns the path of the n-th compressed backup.
func (fa *FileAppender) BackupPath(n int) string {
	return fmt.Sprintf("%s.%d.zst", fa.filePath, n)
}

// rotate - ротация файлов
func (fa *FileAppender) rotate() error {
	if err := fa.file.Close(); err != nil {
		return err
	}

	// Самый старый backup удаляется, остальные сдвигаются
	os.Remove(fa.BackupPath(fa.maxBackups))
	for i := fa.maxBackups - 1; i > 0; i-- {
		oldPath := fa.BackupPath(i)
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, fa.BackupPath(i+1))
		}
	}

	if err := compressFile(fa.filePath, fa.BackupPath(1)); err != nil {
		return err
	}
	if err := os.Remove(fa.filePath); err != nil {
		return err
	}

	file, err := os.OpenFile(fa.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	fa.file = file
	fa.currentSize = 0
	return nil
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		out.Close()
		return fmt.Errorf("failed to compress %s: %w", src, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ReadBackup returns the decompressed content of a rotated backup.
func ReadBackup(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	return io.ReadAll(dec)
}

// Close - закрыть файл
func (fa *FileAppender) Close() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file != nil {
		return fa.file.Close()
	}
	return nil
}

// Flush - сбросить буфер
func (fa *FileAppender) Flush() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file != nil {
		return fa.file.Sync()
	}
	return nil
}

// CurrentSize - текущий размер файла
func (fa *FileAppender) CurrentSize() int64 {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return fa.currentSize
}

// FilePath - путь к файлу
func (fa *FileAppender) FilePath() string {
	return fa.filePath
}
