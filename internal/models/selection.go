package models

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type ItemKind int

const (
	KindFile ItemKind = iota
	KindFolder
	KindText
)

func (k ItemKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// SelectedItem is one entry of the pending selection.
// Which of the path/content fields is meaningful depends on Kind.
type SelectedItem struct {
	ID          string
	Kind        ItemKind
	FileName    string
	SourcePath  string // KindFile
	FolderPath  string // KindFolder
	FileCount   int    // KindFolder
	TextContent string // KindText
}

func NewFileItem(sourcePath string) SelectedItem {
	return SelectedItem{
		ID:         uuid.NewString(),
		Kind:       KindFile,
		FileName:   filepath.Base(sourcePath),
		SourcePath: sourcePath,
	}
}

func NewFolderItem(folderPath string, fileCount int) SelectedItem {
	return SelectedItem{
		ID:         uuid.NewString(),
		Kind:       KindFolder,
		FileName:   filepath.Base(folderPath),
		FolderPath: folderPath,
		FileCount:  fileCount,
	}
}

func NewTextItem(fileName string, content string) SelectedItem {
	if fileName == "" {
		fileName = uuid.NewString()[:8] + ".txt"
	}

	return SelectedItem{
		ID:          uuid.NewString(),
		Kind:        KindText,
		FileName:    fileName,
		TextContent: content,
	}
}

// ItemFromPath probes fpath and returns a file or folder item.
func ItemFromPath(fpath string) (SelectedItem, error) {
	abs, err := filepath.Abs(fpath)
	if err != nil {
		return SelectedItem{}, err
	}

	finfo, err := os.Stat(abs)
	if err != nil {
		return SelectedItem{}, err
	}
	if !finfo.IsDir() {
		return NewFileItem(abs), nil
	}

	count := 0
	err = filepath.WalkDir(abs, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		return SelectedItem{}, err
	}

	return NewFolderItem(abs, count), nil
}

// Equal reports whether two items denote the same content.
// Ids are ignored.
func (it SelectedItem) Equal(other SelectedItem) bool {
	if it.Kind != other.Kind {
		return false
	}

	switch it.Kind {
	case KindText:
		return it.TextContent == other.TextContent && it.FileName == other.FileName
	case KindFolder:
		return it.FolderPath == other.FolderPath
	default:
		return it.SourcePath == other.SourcePath
	}
}

// Path is the filesystem reference of file and folder items.
func (it SelectedItem) Path() string {
	if it.Kind == KindFolder {
		return it.FolderPath
	}
	return it.SourcePath
}

// PendingShare carries a selection until share settings are confirmed.
type PendingShare struct {
	Files []SelectedItem
}
