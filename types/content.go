package types

import "time"

// ContentType tags how a content fragment is rendered.
type ContentType string

const (
	ContentTypeTitulo    ContentType = "titulo"
	ContentTypeSubtitulo ContentType = "subtitulo"
	ContentTypeTexto     ContentType = "texto"
	ContentTypeParrafo   ContentType = "parrafo"
	ContentTypeBoton     ContentType = "boton"
	ContentTypeItemLista ContentType = "item-lista"
)

// IsValid reports whether t is one of the known content types.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeTitulo, ContentTypeSubtitulo, ContentTypeTexto,
		ContentTypeParrafo, ContentTypeBoton, ContentTypeItemLista:
		return true
	}
	return false
}

// ContentItem is one editable text fragment of a page section.
type ContentItem struct {
	ID        string      `json:"id" yaml:"id"`
	Seccion   string      `json:"seccion" yaml:"seccion"`
	Tipo      ContentType `json:"tipo" yaml:"tipo"`
	Contenido string      `json:"contenido" yaml:"contenido"`
	Orden     int         `json:"orden" yaml:"orden"`
	CreatedAt time.Time   `json:"created_at" yaml:"-"`
	UpdatedAt time.Time   `json:"updated_at" yaml:"-"`
}

type ContentCreate struct {
	ID        string      `json:"id" binding:"required"`
	Seccion   string      `json:"seccion" binding:"required"`
	Tipo      ContentType `json:"tipo" binding:"required"`
	Contenido string      `json:"contenido" binding:"required"`
	Orden     int         `json:"orden"`
}

type ContentUpdate struct {
	Contenido *string `json:"contenido" binding:"required"`
}
