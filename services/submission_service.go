package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/go-playground/validator/v10"
)

const defaultActivityLimit = 5

// Notifier is told about each accepted submission.
type Notifier interface {
	Notify(sub *types.FormSubmission, svc *types.Service, form *types.FormDefinition)
}

// SubmissionService records visitor submissions and serves them to the admin.
type SubmissionService struct {
	store    store.SubmissionStore
	services store.ServiceStore
	forms    store.FormStore
	notifier Notifier
	validate *validator.Validate
	now      clock
}

func NewSubmissionService(s store.SubmissionStore, services store.ServiceStore, forms store.FormStore, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		store:    s,
		services: services,
		forms:    forms,
		notifier: notifier,
		validate: validator.New(),
		now:      utcNow,
	}
}

// Create validates the answers against the form's fields and stores them.
func (s *SubmissionService) Create(ctx context.Context, in types.SubmissionCreate) (*types.FormSubmission, error) {
	servicioID := strings.TrimSpace(in.ServicioID)
	formularioID := strings.TrimSpace(in.FormularioID)
	if servicioID == "" || formularioID == "" {
		return nil, apperrors.ValidationFailed("Missing required fields", "servicio_id and formulario_id are required")
	}

	svc, err := s.services.Get(ctx, servicioID)
	if err != nil {
		return nil, s.referenceError(err, "service", servicioID)
	}
	form, err := s.forms.Get(ctx, formularioID)
	if err != nil {
		return nil, s.referenceError(err, "form", formularioID)
	}

	if problems := s.checkAnswers(form.Campos, in.Respuestas); len(problems) > 0 {
		return nil, apperrors.ValidationFailed("Invalid answers", strings.Join(problems, "; "))
	}

	respuestas := make(map[string]string, len(in.Respuestas))
	for k, v := range in.Respuestas {
		respuestas[k] = strings.TrimSpace(v)
	}

	sub := &types.FormSubmission{
		ID:           newID(),
		ServicioID:   servicioID,
		FormularioID: formularioID,
		Respuestas:   respuestas,
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, translateStoreError(err, "Submission", sub.ID)
	}

	logger.GetLogger().Infow("Form submission received", "id", sub.ID, "servicio", servicioID, "formulario", formularioID)
	if s.notifier != nil {
		s.notifier.Notify(sub, svc, form)
	}
	return sub, nil
}

func (s *SubmissionService) referenceError(err error, entity, id string) error {
	if apperr, ok := translateStoreError(err, entity, id).(*apperrors.AppError); ok && apperr.Type == apperrors.NotFoundError {
		return apperrors.ValidationFailed("Unknown "+entity, fmt.Sprintf("%s %q does not exist", entity, id))
	}
	return translateStoreError(err, entity, id)
}

// checkAnswers returns one message per problem, sorted for stable output.
func (s *SubmissionService) checkAnswers(campos []types.FieldDescriptor, respuestas map[string]string) []string {
	fields := make(map[string]types.FieldDescriptor, len(campos))
	for _, f := range campos {
		fields[f.Name] = f
	}

	var problems []string
	for key := range respuestas {
		f, ok := fields[key]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown field", key))
			continue
		}
		if f.Type == types.FieldTypeInfo {
			problems = append(problems, fmt.Sprintf("%s: field does not accept answers", key))
		}
	}

	for _, f := range campos {
		if f.Type == types.FieldTypeInfo {
			continue
		}
		value := strings.TrimSpace(respuestas[f.Name])
		if value == "" {
			if f.Required {
				problems = append(problems, fmt.Sprintf("%s: required", f.Name))
			}
			continue
		}
		switch f.Type {
		case types.FieldTypeEmail:
			if err := s.validate.Var(value, "email"); err != nil {
				problems = append(problems, fmt.Sprintf("%s: invalid email", f.Name))
			}
		case types.FieldTypeSelect:
			if len(f.Options) > 0 && !containsString(f.Options, value) {
				problems = append(problems, fmt.Sprintf("%s: not one of the options", f.Name))
			}
		}
	}

	sort.Strings(problems)
	return problems
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// List returns submissions newest first, narrowed by the filter.
func (s *SubmissionService) List(ctx context.Context, filter types.SubmissionFilter) ([]*types.FormSubmission, error) {
	since, err := s.since(filter.Fecha)
	if err != nil {
		return nil, err
	}
	servicioID := strings.TrimSpace(filter.ServicioID)
	if servicioID == "all" {
		servicioID = ""
	}

	subs, err := s.store.List(ctx, servicioID, since)
	if err != nil {
		return nil, translateStoreError(err, "Submission", "")
	}

	query := strings.ToLower(strings.TrimSpace(filter.Busqueda))
	if query == "" {
		if subs == nil {
			subs = []*types.FormSubmission{}
		}
		return subs, nil
	}

	matched := make([]*types.FormSubmission, 0, len(subs))
	for _, sub := range subs {
		if strings.Contains(strings.ToLower(encodeAnswers(sub.Respuestas)), query) ||
			(sub.Servicio != nil && strings.Contains(strings.ToLower(sub.Servicio.Title), query)) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

// since maps a date range to the earliest matching creation time. Today
// starts at midnight UTC; week and month are rolling 7 and 30 days.
func (s *SubmissionService) since(r types.DateRange) (time.Time, error) {
	now := s.now()
	switch r {
	case "", types.DateRangeAll:
		return time.Time{}, nil
	case types.DateRangeToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case types.DateRangeWeek:
		return now.Add(-7 * 24 * time.Hour), nil
	case types.DateRangeMonth:
		return now.Add(-30 * 24 * time.Hour), nil
	default:
		return time.Time{}, apperrors.ValidationFailed("Invalid date filter", fmt.Sprintf("fecha %q must be all, today, week or month", r))
	}
}

func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return translateStoreError(err, "Submission", id)
	}
	return nil
}

// ExportCSV renders the filtered submissions and returns the download name.
func (s *SubmissionService) ExportCSV(ctx context.Context, filter types.SubmissionFilter) ([]byte, string, error) {
	subs, err := s.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("respuestas_formularios_%s.csv", s.now().Format("2006-01-02"))
	return WriteSubmissionsCSV(subs), filename, nil
}

// WriteSubmissionsCSV quotes every field, doubling embedded quotes.
func WriteSubmissionsCSV(subs []*types.FormSubmission) []byte {
	var buf bytes.Buffer
	writeCSVRow(&buf, "Fecha", "Servicio", "Formulario", "Respuestas")
	for _, sub := range subs {
		servicio, formulario := "N/A", "N/A"
		if sub.Servicio != nil && sub.Servicio.Title != "" {
			servicio = sub.Servicio.Title
		}
		if sub.Formulario != nil && sub.Formulario.Nombre != "" {
			formulario = sub.Formulario.Nombre
		}
		writeCSVRow(&buf, sub.CreatedAt.Format("2006-01-02"), servicio, formulario, encodeAnswers(sub.Respuestas))
	}
	return buf.Bytes()
}

func writeCSVRow(buf *bytes.Buffer, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

// encodeAnswers renders answers as compact JSON without HTML escaping.
func encodeAnswers(respuestas map[string]string) string {
	if respuestas == nil {
		respuestas = map[string]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(respuestas); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// RecentActivity flattens the latest submissions for the dashboard feed.
func (s *SubmissionService) RecentActivity(ctx context.Context, limit int) ([]types.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	subs, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, translateStoreError(err, "Submission", "")
	}

	activity := make([]types.Activity, 0, len(subs))
	for _, sub := range subs {
		activity = append(activity, types.Activity{
			ID:           sub.ID,
			ServicioID:   sub.ServicioID,
			FormularioID: sub.FormularioID,
			CreatedAt:    sub.CreatedAt,
			Nombre:       pickAnswer(sub.Respuestas, "nombre"),
			Email:        pickAnswer(sub.Respuestas, "email"),
			Telefono:     pickAnswer(sub.Respuestas, "telefono"),
			Mensaje:      pickAnswer(sub.Respuestas, "mensaje"),
		})
	}
	return activity, nil
}

// pickAnswer reads key in lower case, then capitalised.
func pickAnswer(respuestas map[string]string, key string) string {
	if v := respuestas[key]; v != "" {
		return v
	}
	return respuestas[strings.ToUpper(key[:1])+key[1:]]
}

func (s *SubmissionService) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, translateStoreError(err, "Submission", "")
	}
	return n, nil
}
