package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type FileInfo struct {
	Name    string
	IsDir   bool
	ModTime time.Time
}

// FileService 定义存储接口
type FileService interface {
	// Save 保存文件到指定子路径，返回相对存储根的路径
	Save(fileName string, data []byte, subPath string) (string, error)

	// Read 读取指定子路径文件的全部内容
	Read(subPath string) ([]byte, error)

	// Delete 删除指定子路径的文件，不存在视为成功
	Delete(subPath string) (bool, error)

	// Exists 判断指定子路径的文件是否存在
	Exists(subPath string) bool

	// Resolve 获取指定子路径的绝对路径
	Resolve(subPath string) (string, error)

	// List 列出该目录下所有文件名
	List(subPath string) ([]FileInfo, error)
}

// LocalFileService 本地存储实现，同时把存储根挂到静态路由上
type LocalFileService struct {
	Route    string
	BasePath string
}

func NewLocalFileService(app fiber.Router, route string, basePath string) *LocalFileService {
	err := os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return nil
	}
	if app != nil {
		app.Static(route, basePath)
	}
	return &LocalFileService{Route: route, BasePath: basePath}
}

// Save 保存文件
func (l *LocalFileService) Save(fileName string, data []byte, subPath string) (string, error) {
	fullPath := filepath.Join(l.BasePath, subPath, fileName)
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return "", err
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", err
	}

	return strings.ReplaceAll(filepath.Join(subPath, fileName), "\\", "/"), nil
}

// Read 读取文件内容
func (l *LocalFileService) Read(subPath string) ([]byte, error) {
	fullPath, err := l.Resolve(subPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// Delete 删除文件
func (l *LocalFileService) Delete(subPath string) (bool, error) {
	fullPath := filepath.Join(l.BasePath, subPath)
	if _, err := os.Stat(fullPath); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := os.Remove(fullPath); err != nil {
		return false, err
	}
	return true, nil
}

// Exists 判断文件是否存在
func (l *LocalFileService) Exists(subPath string) bool {
	_, err := os.Stat(filepath.Join(l.BasePath, subPath))
	return err == nil
}

// Resolve 获取文件绝对路径；已是绝对路径的输入原样返回
func (l *LocalFileService) Resolve(subPath string) (string, error) {
	fullPath := subPath
	if !filepath.IsAbs(subPath) {
		fullPath = filepath.Join(l.BasePath, subPath)
	}
	if _, err := os.Stat(fullPath); errors.Is(err, os.ErrNotExist) {
		return "", errors.New("file not found")
	}
	return fullPath, nil
}

// List 列出目录下所有文件及修改时间
func (l *LocalFileService) List(subPath string) ([]FileInfo, error) {
	fullPath := filepath.Join(l.BasePath, subPath)

	info, err := os.Stat(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s 不是目录", fullPath)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	for _, entry := range entries {
		fi, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Name:    entry.Name(),
			IsDir:   entry.IsDir(),
			ModTime: fi.ModTime(),
		})
	}

	return files, nil
}
