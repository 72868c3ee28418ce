package domain

import "database/sql/driver"

// Every enumeration starts at 1 so the zero value is never a valid member.
// Severity-like enumerations are declared in ascending order of severity.

// TransactionKind is the direction of a transaction.
type TransactionKind int

const (
	KindCredit TransactionKind = iota + 1
	KindDebit
)

var transactionKinds = newEnum("kind", map[TransactionKind]string{
	KindCredit: "credit",
	KindDebit:  "debit",
})

func ParseTransactionKind(s string) (TransactionKind, error) { return transactionKinds.parse(s) }
func (k TransactionKind) String() string { return transactionKinds.label(k) }
func (k TransactionKind) Valid() bool { return transactionKinds.valid(k) }
func (k TransactionKind) MarshalText() ([]byte, error) { return transactionKinds.marshal(k) }
func (k TransactionKind) Value() (driver.Value, error) { return transactionKinds.value(k) }
func (k *TransactionKind) Scan(src any) error { return transactionKinds.scan(k, src) }

func (k *TransactionKind) UnmarshalText(b []byte) (err error) {
	*k, err = transactionKinds.parse(string(b))
	return err
}

// AlertLevel is the liquidity alert severity.
type AlertLevel int

const (
	AlertNormal AlertLevel = iota + 1
	AlertWarning
	AlertCritical
)

var alertLevels = newEnum("alert_level", map[AlertLevel]string{
	AlertNormal:   "normal",
	AlertWarning:  "warning",
	AlertCritical: "critical",
})

func ParseAlertLevel(s string) (AlertLevel, error) { return alertLevels.parse(s) }
func (a AlertLevel) String() string { return alertLevels.label(a) }
func (a AlertLevel) Valid() bool { return alertLevels.valid(a) }
func (a AlertLevel) MarshalText() ([]byte, error) { return alertLevels.marshal(a) }

func (a *AlertLevel) UnmarshalText(b []byte) (err error) {
	*a, err = alertLevels.parse(string(b))
	return err
}

// Urgency is the reorder timing tier.
type Urgency int

const (
	UrgencyLow Urgency = iota + 1
	UrgencyMedium
	UrgencyHigh
)

var urgencies = newEnum("urgency", map[Urgency]string{
	UrgencyLow:    "low",
	UrgencyMedium: "medium",
	UrgencyHigh:   "high",
})

func ParseUrgency(s string) (Urgency, error) { return urgencies.parse(s) }
func (u Urgency) String() string { return urgencies.label(u) }
func (u Urgency) Valid() bool { return urgencies.valid(u) }
func (u Urgency) MarshalText() ([]byte, error) { return urgencies.marshal(u) }

func (u *Urgency) UnmarshalText(b []byte) (err error) {
	*u, err = urgencies.parse(string(b))
	return err
}

// RiskLevel is the credit risk tier.
type RiskLevel int

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskHigh
)

var riskLevels = newEnum("risk_level", map[RiskLevel]string{
	RiskLow:    "low",
	RiskMedium: "medium",
	RiskHigh:   "high",
})

func ParseRiskLevel(s string) (RiskLevel, error) { return riskLevels.parse(s) }
func (r RiskLevel) String() string { return riskLevels.label(r) }
func (r RiskLevel) Valid() bool { return riskLevels.valid(r) }
func (r RiskLevel) MarshalText() ([]byte, error) { return riskLevels.marshal(r) }

func (r *RiskLevel) UnmarshalText(b []byte) (err error) {
	*r, err = riskLevels.parse(string(b))
	return err
}

// BusinessType classifies the business for demand forecasting.
type BusinessType int

const (
	BusinessManufacturing BusinessType = iota + 1
	BusinessService
	BusinessTrading
	BusinessRetail
)

var businessTypes = newEnum("business_type", map[BusinessType]string{
	BusinessManufacturing: "manufacturing",
	BusinessService:       "service",
	BusinessTrading:       "trading",
	BusinessRetail:        "retail",
})

func ParseBusinessType(s string) (BusinessType, error) { return businessTypes.parse(s) }
func (b BusinessType) String() string { return businessTypes.label(b) }
func (b BusinessType) Valid() bool { return businessTypes.valid(b) }
func (b BusinessType) MarshalText() ([]byte, error) { return businessTypes.marshal(b) }
func (b BusinessType) Value() (driver.Value, error) { return businessTypes.value(b) }
func (b *BusinessType) Scan(src any) error { return businessTypes.scan(b, src) }

func (b *BusinessType) UnmarshalText(text []byte) (err error) {
	*b, err = businessTypes.parse(string(text))
	return err
}

// Severity classifies agent log entries.
type Severity int

const (
	SeverityInfo Severity = iota + 1
	SeverityWarning
	SeverityCritical
)

var severities = newEnum("severity", map[Severity]string{
	SeverityInfo:     "info",
	SeverityWarning:  "warning",
	SeverityCritical: "critical",
})

func ParseSeverity(s string) (Severity, error) { return severities.parse(s) }
func (s Severity) String() string { return severities.label(s) }
func (s Severity) Valid() bool { return severities.valid(s) }
func (s Severity) MarshalText() ([]byte, error) { return severities.marshal(s) }
func (s Severity) Value() (driver.Value, error) { return severities.value(s) }
func (s *Severity) Scan(src any) error { return severities.scan(s, src) }

func (s *Severity) UnmarshalText(b []byte) (err error) {
	*s, err = severities.parse(string(b))
	return err
}

// SeverityForAlert maps a liquidity alert onto the agent log severity scale.
func SeverityForAlert(level AlertLevel) Severity {
	switch level {
	case AlertNormal:
		return SeverityInfo
	case AlertWarning:
		return SeverityWarning
	case AlertCritical:
		return SeverityCritical
	}
	panic("domain: unhandled alert level " + level.String())
}

// DocumentStatus tracks document processing.
type DocumentStatus int

const (
	DocumentPending DocumentStatus = iota + 1
	DocumentProcessing
	DocumentCompleted
	DocumentFailed
)

var documentStatuses = newEnum("status", map[DocumentStatus]string{
	DocumentPending:    "pending",
	DocumentProcessing: "processing",
	DocumentCompleted:  "completed",
	DocumentFailed:     "failed",
})

func ParseDocumentStatus(s string) (DocumentStatus, error) { return documentStatuses.parse(s) }
func (d DocumentStatus) String() string { return documentStatuses.label(d) }
func (d DocumentStatus) Valid() bool { return documentStatuses.valid(d) }
func (d DocumentStatus) MarshalText() ([]byte, error) { return documentStatuses.marshal(d) }
func (d DocumentStatus) Value() (driver.Value, error) { return documentStatuses.value(d) }
func (d *DocumentStatus) Scan(src any) error { return documentStatuses.scan(d, src) }

func (d *DocumentStatus) UnmarshalText(b []byte) (err error) {
	*d, err = documentStatuses.parse(string(b))
	return err
}
