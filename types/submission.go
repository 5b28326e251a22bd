package types

import "time"

// FormSubmission is one visitor intake submission.
type FormSubmission struct {
	ID           string            `json:"id"`
	ServicioID   string            `json:"servicio_id"`
	FormularioID string            `json:"formulario_id"`
	Respuestas   map[string]string `json:"respuestas"`
	CreatedAt    time.Time         `json:"created_at"`
	// Joined on admin reads.
	Servicio   *SubmissionService `json:"servicio,omitempty"`
	Formulario *SubmissionForm    `json:"formulario,omitempty"`
}

type SubmissionService struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Icon  *string `json:"icon"`
}

type SubmissionForm struct {
	Nombre string `json:"nombre"`
}

type SubmissionCreate struct {
	ServicioID   string            `json:"servicio_id" binding:"required"`
	FormularioID string            `json:"formulario_id" binding:"required"`
	Respuestas   map[string]string `json:"respuestas" binding:"required"`
}

// DateRange filters submissions by age.
type DateRange string

const (
	DateRangeAll   DateRange = "all"
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
)

// SubmissionFilter narrows the admin submission list. Zero values match all.
type SubmissionFilter struct {
	ServicioID string    `form:"servicio"`
	Fecha      DateRange `form:"fecha"`
	Busqueda   string    `form:"busqueda"`
}

// Activity is a flattened recent submission for the dashboard feed.
type Activity struct {
	ID           string    `json:"id"`
	ServicioID   string    `json:"servicio_id"`
	FormularioID string    `json:"formulario_id"`
	CreatedAt    time.Time `json:"created_at"`
	Nombre       string    `json:"nombre"`
	Email        string    `json:"email"`
	Telefono     string    `json:"telefono"`
	Mensaje      string    `json:"mensaje"`
}

// DashboardStats are the admin home counters.
type DashboardStats struct {
	Contenido  int `json:"contenido"`
	Servicios  int `json:"servicios"`
	Recursos   int `json:"recursos"`
	Items      int `json:"items"`
	Respuestas int `json:"respuestas"`
}
