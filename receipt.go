package pushover

import (
	"encoding/json"
	"regexp"
	"time"
)

var receiptPattern = regexp.MustCompile(`^[A-Za-z0-9]{30}$`)

// Receipt identifies an emergency-priority notification awaiting
// acknowledgement. The API issues exactly 30 alphanumeric characters.
type Receipt string

func (r Receipt) IsValid() bool {
	return receiptPattern.MatchString(string(r))
}

// ReceiptStatus is the delivery state of an emergency-priority notification.
// The API encodes booleans as 0/1 and times as unix seconds; absent times
// decode to the zero time.
type ReceiptStatus struct {
	Status               int
	Acknowledged         bool
	AcknowledgedAt       time.Time
	AcknowledgedBy       string
	AcknowledgedByDevice string
	LastDeliveredAt      time.Time
	Expired              bool
	ExpiresAt            time.Time
	CalledBack           bool
	CalledBackAt         time.Time
}

func (s *ReceiptStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status               int    `json:"status"`
		Acknowledged         int    `json:"acknowledged"`
		AcknowledgedAt       int64  `json:"acknowledged_at"`
		AcknowledgedBy       string `json:"acknowledged_by"`
		AcknowledgedByDevice string `json:"acknowledged_by_device"`
		LastDeliveredAt      int64  `json:"last_delivered_at"`
		Expired              int    `json:"expired"`
		ExpiresAt            int64  `json:"expires_at"`
		CalledBack           int    `json:"called_back"`
		CalledBackAt         int64  `json:"called_back_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Status = raw.Status
	s.Acknowledged = raw.Acknowledged == 1
	s.AcknowledgedAt = unixTime(raw.AcknowledgedAt)
	s.AcknowledgedBy = raw.AcknowledgedBy
	s.AcknowledgedByDevice = raw.AcknowledgedByDevice
	s.LastDeliveredAt = unixTime(raw.LastDeliveredAt)
	s.Expired = raw.Expired == 1
	s.ExpiresAt = unixTime(raw.ExpiresAt)
	s.CalledBack = raw.CalledBack == 1
	s.CalledBackAt = unixTime(raw.CalledBackAt)
	return nil
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
