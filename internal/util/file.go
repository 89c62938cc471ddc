package util

import (
	"path/filepath"
	"strings"
)

var documentExtSet = map[string]struct{}{
	".doc":  {},
	".docx": {},
	".md":   {},
	".txt":  {},
	".log":  {},
	".ppt":  {},
	".pptx": {},
	".xls":  {},
	".xlsx": {},
	".pdf":  {},
}

var imageExtSet = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".gif":  {},
	".heic": {},
	".livp": {},
	".apng": {},
}

var audioExtSet = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".aac":  {},
	".ogg":  {},
	".flac": {},
	".amr":  {},
}

func GetFileTypeByExt(ext string) string {
	ext = strings.ToLower(ext)
	if _, isDoc := documentExtSet[ext]; isDoc {
		return "document"
	}
	if _, isImg := imageExtSet[ext]; isImg {
		return "image"
	}
	if _, isAudio := audioExtSet[ext]; isAudio {
		return "audio"
	}
	return "unknown"
}

func GetFileExt(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

func GetFileType(fileName string) string {
	return GetFileTypeByExt(GetFileExt(fileName))
}
