package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sevendos/invoice-transfer/internal/models"
)

// Source field names as exported by the time-tracking tool.
const (
	fieldProjectID       = "projectId"
	fieldProjectName     = "projectName"
	fieldProjectTask     = "projectTask"
	fieldActualMinutes   = "actualMinutes"
	fieldActualHours     = "actualHours"
	fieldTaskRate        = "taskHourlyPrice"
	fieldOpeningRate     = "openingHourlyPrice"
	fieldBillable        = "billable"
	fieldEmployeeCompany = "employeeCompany"
	fieldDate            = "date"
	fieldDescription     = "description"
	fieldFixedAmount     = "fixedAmount"
)

// minutesPerHour converts reported minutes into hours.
var minutesPerHour = decimal.NewFromInt(60)

// hoursPrecision is the decimal precision hour values carry in the source
// system. Minute conversion rounds to it instead of truncating.
const hoursPrecision = 2

// RawRow is one heterogeneous input record: a header-keyed field map plus its
// position in the source data.
type RawRow struct {
	Number int
	Fields map[string]string
}

// Normalizer coerces raw time-entry and fixed-fee rows into BillableLineItems.
type Normalizer struct {
	logger *zap.Logger
}

// New creates a Normalizer.
func New(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts a batch of raw rows. Malformed rows are returned as
// error records so one bad row never aborts the batch.
func (n *Normalizer) Normalize(rows []RawRow) ([]models.BillableLineItem, []models.ErrorRecord) {
	items := make([]models.BillableLineItem, 0, len(rows))
	var failures []models.ErrorRecord

	for _, row := range rows {
		item, err := n.normalizeRow(row)
		if err != nil {
			n.logger.Warn("Dropping malformed input row",
				zap.Int("row", row.Number),
				zap.Error(err))
			failures = append(failures, models.ErrorRecord{
				SourceRow: row.Number,
				ProjectID: row.Fields[fieldProjectID],
				TaskName:  row.Fields[fieldProjectTask],
				Reason:    "malformed row",
				Detail:    err.Error(),
			})
			continue
		}
		items = append(items, item)
	}

	n.logger.Info("Normalized input rows",
		zap.Int("total", len(rows)),
		zap.Int("accepted", len(items)),
		zap.Int("rejected", len(failures)))
	return items, failures
}

func (n *Normalizer) normalizeRow(row RawRow) (models.BillableLineItem, error) {
	fields := row.Fields

	projectID := strings.TrimSpace(fields[fieldProjectID])
	if projectID == "" {
		return models.BillableLineItem{}, ErrMissingProjectID
	}

	item := models.BillableLineItem{
		SourceRow:     row.Number,
		ProjectID:     projectID,
		ProjectName:   strings.TrimSpace(fields[fieldProjectName]),
		TaskName:      strings.TrimSpace(fields[fieldProjectTask]),
		SourceCompany: strings.TrimSpace(fields[fieldEmployeeCompany]),
		Description:   strings.TrimSpace(fields[fieldDescription]),
	}

	if dateStr := strings.TrimSpace(fields[fieldDate]); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return models.BillableLineItem{}, fmt.Errorf("%w: %q", ErrBadDate, dateStr)
		}
		item.PeriodStart = date
		item.PeriodEnd = date
	}

	billable, err := parseBool(fields[fieldBillable])
	if err != nil {
		return models.BillableLineItem{}, fmt.Errorf("%w: billable=%q", ErrBadBoolean, fields[fieldBillable])
	}
	item.Billable = billable

	if amount := strings.TrimSpace(fields[fieldFixedAmount]); amount != "" {
		return n.normalizeFixed(item, amount)
	}
	return n.normalizeHours(item, fields)
}

// normalizeHours fills in quantity and embedded rate for a time entry.
// Minutes take precedence over a pre-computed hours field.
func (n *Normalizer) normalizeHours(item models.BillableLineItem, fields map[string]string) (models.BillableLineItem, error) {
	item.Unit = models.UnitHours

	minutesStr := strings.TrimSpace(fields[fieldActualMinutes])
	hoursStr := strings.TrimSpace(fields[fieldActualHours])
	switch {
	case minutesStr != "":
		minutes, err := decimal.NewFromString(minutesStr)
		if err != nil {
			return models.BillableLineItem{}, fmt.Errorf("%w: minutes=%q", ErrBadQuantity, minutesStr)
		}
		item.Quantity = minutes.DivRound(minutesPerHour, hoursPrecision)
	case hoursStr != "":
		hours, err := decimal.NewFromString(hoursStr)
		if err != nil {
			return models.BillableLineItem{}, fmt.Errorf("%w: hours=%q", ErrBadQuantity, hoursStr)
		}
		item.Quantity = hours
	default:
		return models.BillableLineItem{}, ErrMissingQuantity
	}
	if item.Quantity.IsNegative() {
		return models.BillableLineItem{}, fmt.Errorf("%w: %s", ErrNegativeQuantity, item.Quantity)
	}

	// Task-level rate wins over the engagement opening rate.
	for _, field := range []string{fieldTaskRate, fieldOpeningRate} {
		rateStr := strings.TrimSpace(fields[field])
		if rateStr == "" {
			continue
		}
		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return models.BillableLineItem{}, fmt.Errorf("%w: %s=%q", ErrBadRate, field, rateStr)
		}
		item.EmbeddedRate = &rate
		break
	}
	return item, nil
}

// normalizeFixed fills in a fixed-fee or passthrough row: quantity 1, the
// amount carried as the embedded rate.
func (n *Normalizer) normalizeFixed(item models.BillableLineItem, amountStr string) (models.BillableLineItem, error) {
	item.Unit = models.UnitFixed
	amount, err := decimal.NewFromString(cleanAmount(amountStr))
	if err != nil {
		return models.BillableLineItem{}, fmt.Errorf("%w: amount=%q", ErrBadRate, amountStr)
	}
	item.Quantity = decimal.NewFromInt(1)
	item.EmbeddedRate = &amount
	return item, nil
}

// parseBool interprets the boolean spellings seen in exports: True/False,
// yes/no and 1/0, case-insensitively. Empty is false.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0", "":
		return false, nil
	default:
		return false, ErrBadBoolean
	}
}

// cleanAmount strips currency symbols, spaces and comma decimal separators
// from spreadsheet-formatted amounts.
func cleanAmount(value string) string {
	value = strings.ReplaceAll(value, "€", "")
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, " ", "")
	return strings.ReplaceAll(value, ",", ".")
}
