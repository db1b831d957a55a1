package models

// HoursPolicy controls which billable entries of a project are invoiced.
type HoursPolicy string

const (
	// HoursAll invoices every billable entry of the project.
	HoursAll HoursPolicy = "ALL"
	// HoursCompanyOnly invoices only entries worked by the internal company.
	HoursCompanyOnly HoursPolicy = "COMPANY_ONLY"
)

// RateSource selects where a project's unit rate comes from.
type RateSource string

const (
	// RateInternal prices entries from the internal rate table,
	// overriding whatever the time-tracking tool reports.
	RateInternal RateSource = "INTERNAL"
	// RateEmbedded prices entries at the rate recorded at time of entry.
	RateEmbedded RateSource = "EMBEDDED"
)

// Dimensions are the accounting dimension codes stamped on every invoice row.
type Dimensions struct {
	CostCenter   string
	BusinessLine string
	Area         string
	Service      string
}

// CustomerConfig is one customer/project billing policy, keyed by project ID.
// Loaded once per run and read-only thereafter.
type CustomerConfig struct {
	ProjectID   string
	ClientName  string
	ServiceName string

	// Active gates invoicing. Inactive projects stay in the index so their
	// entries can be excluded with a clear reason instead of vanishing.
	Active bool

	IncludedHours HoursPolicy
	RateSource    RateSource

	InvoiceExtID      string
	AccountExtID      string
	OurReference      string
	CustomerReference string
	ContractNumber    string
	SalesItemCode     string

	// DescriptionTemplate renders invoice row descriptions. Supported tokens:
	// {client}, {service}, {task}, {period_start}, {period_end}.
	// Empty renders "client - service - task".
	DescriptionTemplate string

	TaxApplicability string
	TaxCode          string

	Dimensions Dimensions
}

// Equal reports whether two configs would price and group identically.
// Used to tell harmless duplicate config rows from conflicting ones.
func (c CustomerConfig) Equal(other CustomerConfig) bool {
	return c == other
}
