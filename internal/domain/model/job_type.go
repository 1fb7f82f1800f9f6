package model

type JobType string

const (
	JobTypeGTINVerification JobType = "gtin-verification"
	JobTypePriceStockUpdate JobType = "price-stock-update"
	JobTypeOfferPublication JobType = "offer-publication"
	JobTypeOfferDeletion    JobType = "offer-deletion"
)

// PayloadShape selects how a job type's progress frames are laid out.
type PayloadShape int

const (
	// ShapeFlat: status/progress/error live at the top level of the frame.
	ShapeFlat PayloadShape = iota
	// ShapeNestedJob: frame nests them under a "job" key with a sibling
	// "items" array.
	ShapeNestedJob
)

// CompletionMode selects how the artifact of a completed job is obtained.
// Exactly one mode applies per job type, never both.
type CompletionMode int

const (
	// CompletionFetch: GET the type's download endpoint after the terminal frame.
	CompletionFetch CompletionMode = iota
	// CompletionInline: the terminal frame itself carries the artifact as base64.
	CompletionInline
)

// Descriptor captures everything that differs between the four job types:
// endpoints, multipart field naming, frame layout and completion mode.
// The asymmetric user field names (userName vs usuario) are a real server
// contract and must be preserved per type, not unified.
type Descriptor struct {
	SubmitPath   string
	ReportPath   string
	DownloadPath string
	UserField    string
	Shape        PayloadShape
	Completion   CompletionMode
	FileLabel    string
}

var descriptors = map[JobType]Descriptor{
	JobTypeGTINVerification: {
		SubmitPath: "/api/verify-gtin",
		ReportPath: "/api/report-gtin",
		UserField:  "userName",
		Shape:      ShapeNestedJob,
		Completion: CompletionInline,
		FileLabel:  "verificacao_gtin",
	},
	JobTypePriceStockUpdate: {
		SubmitPath:   "/api/update-price-stock",
		ReportPath:   "/api/report-price-stock",
		DownloadPath: "/api/download-price-stock",
		UserField:    "usuario",
		Shape:        ShapeFlat,
		Completion:   CompletionFetch,
		FileLabel:    "estoque_atualizado",
	},
	JobTypeOfferPublication: {
		SubmitPath:   "/api/publish-offers",
		ReportPath:   "/api/report-offers",
		DownloadPath: "/api/download-offers",
		UserField:    "usuario",
		Shape:        ShapeFlat,
		Completion:   CompletionFetch,
		FileLabel:    "publicacao_ofertas",
	},
	JobTypeOfferDeletion: {
		SubmitPath:   "/api/delete-offers",
		ReportPath:   "/api/report-delete-offers",
		DownloadPath: "/api/download-delete-offers",
		UserField:    "usuario",
		Shape:        ShapeFlat,
		Completion:   CompletionFetch,
		FileLabel:    "exclusao_ofertas",
	},
}

// Descriptor returns the wire descriptor for the job type.
func (t JobType) Descriptor() (Descriptor, bool) {
	d, ok := descriptors[t]
	return d, ok
}

// ParseJobType maps an external string onto a known JobType.
func ParseJobType(s string) (JobType, bool) {
	t := JobType(s)
	_, ok := descriptors[t]
	return t, ok
}

// JobTypes lists all known job types in a stable order.
func JobTypes() []JobType {
	return []JobType{
		JobTypeGTINVerification,
		JobTypePriceStockUpdate,
		JobTypeOfferPublication,
		JobTypeOfferDeletion,
	}
}
