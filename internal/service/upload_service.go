package service

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/util"
)

// UploadService 文件上传：落盘到 blob 存储并登记数据库
type UploadService struct {
	DB    *gorm.DB
	Files FileService
}

func NewUploadService(db *gorm.DB, files FileService) *UploadService {
	return &UploadService{DB: db, Files: files}
}

// UploadFiles 逐个保存上传文件。
// 相机格式图片先归一成 JPEG；存储名用数据库 ID，按日期分目录。
func (s *UploadService) UploadFiles(files []*multipart.FileHeader, userID uuid.UUID) ([]model.UploadedFile, error) {
	uploaded := make([]model.UploadedFile, 0, len(files))

	for _, fh := range files {
		rec, err := s.uploadSingle(fh, userID)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, *rec)
	}

	return uploaded, nil
}

func (s *UploadService) uploadSingle(fh *multipart.FileHeader, userID uuid.UUID) (*model.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Println("failed to close uploaded file:", cerr)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	ext := util.GetFileExt(fh.Filename)
	fileType := util.GetFileType(fh.Filename)

	// heic / livp 先转 JPEG，OCR 不认相机格式
	if fileType == "image" && (ext == ".heic" || ext == ".livp") {
		if converted, cerr := util.ProcessImageToJPEG(data, ext); cerr == nil {
			data = converted
			ext = ".jpg"
		} else {
			log.Println("Image normalize error, keeping original:", cerr)
		}
	}

	// 先建数据库记录拿 ID
	record := &model.UploadedFile{
		UserID:   userID,
		FileName: fh.Filename,
		FileType: fileType,
		FileSize: int64(len(data)),
	}
	if err := s.DB.Create(record).Error; err != nil {
		return nil, err
	}

	subPath := time.Now().Format("2006/01/02")
	storedFileName := fmt.Sprintf("%s%s", record.ID, ext)

	savedPath, err := s.Files.Save(storedFileName, data, subPath)
	if err != nil {
		s.DB.Delete(record)
		return nil, err
	}

	record.FilePath = savedPath
	if err := s.DB.Model(record).Update("file_path", savedPath).Error; err != nil {
		return nil, err
	}

	return record, nil
}
