package services

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warsztat/workshop-api/models"
	"github.com/warsztat/workshop-api/scheduling"
)

// DocumentKind selects the document rendered for an order
type DocumentKind string

const (
	DocumentInvoice  DocumentKind = "invoice"
	DocumentProtocol DocumentKind = "protocol"
)

// DocumentGenerator renders a document for an order and returns the key it
// was stored under. The order must carry its client, vehicle, employee,
// services, parts and protocol.
type DocumentGenerator interface {
	Generate(ctx context.Context, kind DocumentKind, order *models.Order) (string, error)
}

var documentTemplates = map[DocumentKind]*template.Template{
	DocumentInvoice: template.Must(template.New("invoice").Parse(`INVOICE {{.Number}}
Issued: {{.Issued}}

Client:   {{.Client}}
Email:    {{.ClientEmail}}
Vehicle:  {{.Vehicle}}
Repair:   {{.Start}} - {{.End}}

Services
{{range .Services}}{{printf "  %-40s %12s" .Name .Amount}}
{{end}}{{if .Parts}}
Parts
{{range .Parts}}{{printf "  %-28s %3d x %8s %12s" .Name .Quantity .Unit .Amount}}
{{end}}{{end}}
{{printf "%-42s %12s" "TOTAL" .Total}}
`)),
	DocumentProtocol: template.Must(template.New("protocol").Parse(`VEHICLE HANDOVER PROTOCOL
Order:        {{.Number}}
Issued:       {{.Issued}}

Client:       {{.Client}}
Vehicle:      {{.Vehicle}}
VIN:          {{.VIN}}
Registration: {{.Registration}}
Employee:     {{.Employee}}

Condition
  {{.Description}}

Services
{{range .Services}}  - {{.Name}}
{{end}}
Photos
{{range .Photos}}  - {{.}}
{{else}}  No photos of the vehicle.
{{end}}`)),
}

type documentLine struct {
	Name     string
	Quantity int
	Unit     string
	Amount   string
}

type documentView struct {
	Number       string
	Issued       string
	Client       string
	ClientEmail  string
	Vehicle      string
	VIN          string
	Registration string
	Employee     string
	Description  string
	Start        string
	End          string
	Services     []documentLine
	Parts        []documentLine
	Photos       []string
	Total        string
}

// RenderDocument renders the plain-text document for an order
func RenderDocument(kind DocumentKind, order *models.Order, issued time.Time) ([]byte, error) {
	tmpl, ok := documentTemplates[kind]
	if !ok {
		return nil, errors.Errorf("unknown document kind %q", kind)
	}

	const layout = "2006-01-02 15:04 MST"
	view := documentView{
		Number:      fmt.Sprintf("%d/%d", order.ID, order.StartDate.Year()),
		Issued:      issued.UTC().Format(layout),
		Client:      "-",
		Vehicle:     "-",
		VIN:         "-",
		Employee:    "-",
		Description: "No description.",
		Start:       order.StartDate.UTC().Format(layout),
		End:         scheduling.EstimatedEnd(order.StartDate, order.Services).UTC().Format(layout),
		Total:       scheduling.TotalCost(order.Services, order.Parts).StringFixed(2),
	}
	if order.Client != nil {
		view.Client = order.Client.FullName()
		view.ClientEmail = order.Client.Email
	}
	if order.Vehicle != nil {
		view.Vehicle = fmt.Sprintf("%s %s, %d", order.Vehicle.Brand, order.Vehicle.Model, order.Vehicle.ProductionYear)
		view.VIN = order.Vehicle.VIN
		view.Registration = order.Vehicle.RegistrationNumber
	}
	if order.Employee != nil {
		view.Employee = order.Employee.FullName()
	}
	if order.Protocol != nil {
		if order.Protocol.Description != nil && *order.Protocol.Description != "" {
			view.Description = *order.Protocol.Description
		}
		for _, p := range order.Protocol.Photos {
			view.Photos = append(view.Photos, p.S3Key)
		}
	}
	for _, s := range order.Services {
		view.Services = append(view.Services, documentLine{Name: s.Name, Amount: s.Price.StringFixed(2)})
	}
	for _, p := range order.Parts {
		view.Parts = append(view.Parts, documentLine{
			Name:     p.Name,
			Quantity: p.Quantity,
			Unit:     p.Price.StringFixed(2),
			Amount:   p.LineTotal().StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, errors.Wrapf(err, "render %s", kind)
	}
	return buf.Bytes(), nil
}

// S3DocumentService renders documents as text and stores them in S3
type S3DocumentService struct {
	s3  S3Interface
	log *zap.Logger
	now func() time.Time
}

var documentServiceInstance DocumentGenerator

// NewS3DocumentService creates a generator writing to s3Service
func NewS3DocumentService(s3Service S3Interface, log *zap.Logger) *S3DocumentService {
	return &S3DocumentService{s3: s3Service, log: log, now: time.Now}
}

// InitDocumentService initializes the global document generator
func InitDocumentService(s3Service S3Interface, log *zap.Logger) DocumentGenerator {
	documentServiceInstance = NewS3DocumentService(s3Service, log)
	return documentServiceInstance
}

// GetDocumentService returns the initialized document generator
func GetDocumentService() DocumentGenerator {
	return documentServiceInstance
}

// SetDocumentService sets the document generator (primarily for testing)
func SetDocumentService(generator DocumentGenerator) {
	documentServiceInstance = generator
}

// Generate renders and uploads the document. Any failure is reported as
// scheduling.ErrDocumentGenerationFailed.
func (s *S3DocumentService) Generate(ctx context.Context, kind DocumentKind, order *models.Order) (string, error) {
	body, err := RenderDocument(kind, order, s.now())
	if err != nil {
		return "", &scheduling.DocumentError{Kind: string(kind), Err: err}
	}

	key := fmt.Sprintf("documents/%s/%d/%s.txt", kind, order.ID, uuid.NewString())
	if err := s.s3.PutObject(ctx, key, "text/plain; charset=utf-8", body); err != nil {
		s.log.Error("Document upload failed",
			zap.String("kind", string(kind)),
			zap.Uint("order_id", order.ID),
			zap.Error(err),
		)
		return "", &scheduling.DocumentError{Kind: string(kind), Err: errors.Wrap(err, "upload")}
	}

	s.log.Info("Document generated",
		zap.String("kind", string(kind)),
		zap.Uint("order_id", order.ID),
		zap.String("key", key),
	)
	return key, nil
}
