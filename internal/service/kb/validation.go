package kb

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"knowledgebase/internal/config"
	"knowledgebase/internal/domain"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

// validationError wraps an ozzo validation failure as a domain error
func validationError(err error) error {
	return &domain.ValidationError{Message: fmt.Sprintf("%s: %v", domain.ErrValidation, err)}
}

// cleanName trims name and checks it is non-empty and at most maxLen runes
func cleanName(field, name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error(field+" cannot be empty"),
		validation.RuneLength(1, maxLen).Error(fmt.Sprintf("%s must be at most %d characters", field, maxLen)),
	)
	if err != nil {
		return "", validationError(err)
	}
	return name, nil
}

func checkFolderPath(path string) error {
	if len(path) > config.MaxFolderPathLength {
		return validationError(fmt.Errorf("folder path exceeds maximum length of %d", config.MaxFolderPathLength))
	}
	return nil
}

func validateCreateFolder(req *kbSvc.CreateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
	)
	if err != nil {
		return validationError(err)
	}
	return nil
}

func validateCreateDocument(req *kbSvc.CreateDocumentRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.FolderPath, validation.NilOrNotEmpty, validation.Length(0, config.MaxFolderPathLength)),
	)
	if err != nil {
		return validationError(err)
	}
	if req.FolderID != nil && req.FolderPath != nil {
		return validationError(fmt.Errorf("folder_id and folder_path are mutually exclusive"))
	}
	return nil
}

func validateAssetUpload(req *kbSvc.CreateAssetUploadRequest, maxBytes int64) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.Filename,
			validation.Required,
			validation.RuneLength(1, config.MaxAssetFilenameLength),
		),
		validation.Field(&req.MimeType,
			validation.Required,
			validation.By(isImageMimeType),
		),
		validation.Field(&req.Size,
			validation.Required,
			validation.Min(int64(1)),
			validation.Max(maxBytes).Error(fmt.Sprintf("must be at most %d bytes", maxBytes)),
		),
	)
	if err != nil {
		return validationError(err)
	}
	return nil
}

func isImageMimeType(value any) error {
	mime, _ := value.(string)
	if !strings.HasPrefix(strings.ToLower(mime), "image/") {
		return fmt.Errorf("must be an image type")
	}
	return nil
}
