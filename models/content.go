package models

import "time"

/************************************************
/**** MARK: CONTENT TYPES ****/
/************************************************/
const CONTENT_TYPE_PHOTO = "photo"
const CONTENT_TYPE_VIDEO = "video"
const CONTENT_TYPE_TEXT = "text"
const CONTENT_TYPE_TITLE = "title"
const CONTENT_TYPE_TUTORIAL = "tutorial"
const CONTENT_TYPE_PROCEDURE = "procedure"
const CONTENT_TYPE_TROUBLESHOOTING = "troubleshooting"
const CONTENT_TYPE_EQUIPMENT = "equipment"

var ContentTypes = []string{
	CONTENT_TYPE_PHOTO,
	CONTENT_TYPE_VIDEO,
	CONTENT_TYPE_TEXT,
	CONTENT_TYPE_TITLE,
	CONTENT_TYPE_TUTORIAL,
	CONTENT_TYPE_PROCEDURE,
	CONTENT_TYPE_TROUBLESHOOTING,
	CONTENT_TYPE_EQUIPMENT,
}

func IsValidContentType(t string) bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// IsMediaType indica tipos que exigem arquivo anexado na criação.
func IsMediaType(t string) bool {
	return t == CONTENT_TYPE_PHOTO || t == CONTENT_TYPE_VIDEO
}

// Content representa um registro da base de conhecimento. FilePath
// guarda só o nome do arquivo armazenado, nunca o blob. Steps guarda o
// payload serializado e StepsKind diz qual das duas formas está lá
// (árvore de passos ou ledger de adições).
type Content struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Title       string     `gorm:"not null" json:"title" form:"title"`
	Description string     `gorm:"type:text" json:"description" form:"description"`
	Type        string     `gorm:"not null" json:"type" form:"type"`
	Sector      string     `gorm:"not null" json:"sector" form:"sector"`
	FilePath    string     `gorm:"column:file_path" json:"file_path"`
	TextContent string     `gorm:"type:text" json:"text_content" form:"text_content"`
	Steps       string     `gorm:"type:text" json:"steps"`
	StepsKind   string     `gorm:"column:steps_kind" json:"steps_kind"`
	Priority    int        `gorm:"default:0" json:"priority" form:"priority"`
	Complexity  int        `gorm:"default:0" json:"complexity" form:"complexity"`
	Views       int64      `gorm:"not null; default: 0" json:"views"`
	CreatedBy   int64      `gorm:"column:created_by" json:"created_by"`
	UpdatedBy   int64      `gorm:"column:updated_by" json:"updated_by"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func (content Content) MissingFields() string {
	if content.Title == "" {
		return "title"
	} else if content.Type == "" {
		return "type"
	} else if content.Sector == "" {
		return "sector"
	}
	return ""
}
