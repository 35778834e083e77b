package media

import (
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/dmitrijs2005/roammigrate/internal/common"
)

// unsafeChars are characters that break URLs or Markdown links.
const unsafeChars = " ()[],;&#"

// hashLen is the number of hex characters kept by HashName.
const hashLen = 12

var underscores = regexp.MustCompile(`_+`)

var stemReplacer = strings.NewReplacer(
	" ", "_",
	"(", "",
	")", "",
	"[", "",
	"]", "",
	",", "",
	";", "",
	"#", "",
	"&", "and",
)

// NamingPolicy selects how object keys are derived from file names.
type NamingPolicy struct {
	KeepOriginalNames bool // false: anonymize with HashName
	CleanFilenames    bool // clean names containing unsafeChars
}

// TargetName returns the object key for a local file name.
func (p NamingPolicy) TargetName(name string) string {
	if !p.KeepOriginalNames {
		return HashName(name)
	}
	if p.CleanFilenames && NeedsCleaning(name) {
		return CleanName(name)
	}
	return name
}

// NeedsCleaning reports whether name holds a character from unsafeChars.
func NeedsCleaning(name string) bool {
	return strings.ContainsAny(name, unsafeChars)
}

// CleanName rewrites the stem of name: spaces become "_", "&" becomes
// "and", the other unsafe characters are dropped, runs of "_" collapse and
// leading/trailing "_" are trimmed. The extension is kept.
//
//	CleanName("My File (2).png") == "My_File_2.png"
func CleanName(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	stem = stemReplacer.Replace(stem)
	stem = underscores.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "_")

	return stem + ext
}

// HashName returns a short deterministic name: the first 12 hex characters
// of the BLAKE2b-256 digest of name plus the original extension.
func HashName(name string) string {
	sum := blake2b.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])[:hashLen] + filepath.Ext(name)
}

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".mp4":  "video/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".zip":  "application/zip",
}

// ContentType maps an extension (with the dot, any case) to a MIME type.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return common.DefaultContentType
}
