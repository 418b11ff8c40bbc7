package traverse

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// BinaryDetector rejects non-text files before any content is kept as a sample.
type BinaryDetector struct {
	binaryExtensions map[string]bool
}

// NewBinaryDetector creates a detector with the known binary extension set.
func NewBinaryDetector() *BinaryDetector {
	exts := []string{
		// Fonts
		".woff", ".woff2", ".ttf", ".otf", ".eot",
		// Images (svg is XML and stays text)
		".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".webp", ".tiff", ".tif", ".avif", ".psd",
		// Archives
		".zip", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar", ".jar", ".war", ".ear",
		// Executables and objects
		".exe", ".dll", ".so", ".dylib", ".a", ".o", ".obj", ".bin", ".wasm", ".lib",
		// Media
		".mp3", ".mp4", ".avi", ".mov", ".wmv", ".flv", ".wav", ".flac", ".ogg", ".webm", ".mkv",
		// Binary documents
		".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
		// Databases
		".db", ".sqlite", ".sqlite3",
		// Bytecode and serialized data
		".pyc", ".pyo", ".class", ".pickle", ".pkl", ".npy",
	}
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return &BinaryDetector{binaryExtensions: m}
}

// IsBinaryByExtension checks if a file is binary based on its extension
func (bd *BinaryDetector) IsBinaryByExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return bd.binaryExtensions[ext]
}

// IsBinaryByContent inspects the first BinaryPreCheckBytes bytes for known
// magic numbers, NUL bytes and control characters.
func (bd *BinaryDetector) IsBinaryByContent(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	sample := content
	if len(sample) > types.BinaryPreCheckBytes {
		sample = sample[:types.BinaryPreCheckBytes]
	}

	for _, magic := range magicNumbers {
		if bytes.HasPrefix(sample, magic) {
			return true
		}
	}

	nullBytes := 0
	nonPrintable := 0
	for _, b := range sample {
		if b == 0 {
			nullBytes++
		}
		// High bytes may be UTF-8 so only low control characters count
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			nonPrintable++
		}
	}

	if nullBytes > 0 {
		return true
	}
	return nonPrintable > len(sample)*30/100
}

// IsBinary combines extension and content checks
func (bd *BinaryDetector) IsBinary(path string, content []byte) bool {
	if bd.IsBinaryByExtension(path) {
		return true
	}
	return bd.IsBinaryByContent(content)
}

var magicNumbers = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x50, 0x4B, 0x03, 0x04}, // zip
	{0x50, 0x4B, 0x05, 0x06}, // empty zip
	{0x89, 0x50, 0x4E, 0x47}, // png
	{0xFF, 0xD8, 0xFF},       // jpeg
	{0x47, 0x49, 0x46, 0x38}, // gif
	{0x25, 0x50, 0x44, 0x46}, // pdf
	{0x7F, 0x45, 0x4C, 0x46}, // elf
	{0x4D, 0x5A},             // dos/windows executable
	{0xCA, 0xFE, 0xBA, 0xBE}, // mach-o fat / java class
	{0xCF, 0xFA, 0xED, 0xFE}, // mach-o 64
	{0x00, 0x61, 0x73, 0x6D}, // wasm
	{0x77, 0x4F, 0x46, 0x46}, // woff
	{0x77, 0x4F, 0x46, 0x32}, // woff2
}
