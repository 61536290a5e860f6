package domain

import (
	"math"
	"time"
)

// Reserved quota values. They are never valid measurements.
const (
	// SpaceNotComputed is reported while the server has not computed the value yet
	SpaceNotComputed int64 = -1

	// SpaceUnknown is reported when the server cannot determine the value
	SpaceUnknown int64 = -2

	// SpaceUnlimited is reported for users without a storage limit
	SpaceUnlimited int64 = -3

	// QuotaLimitNotAvailable marks servers that predate quota limit reporting
	QuotaLimitNotAvailable int64 = math.MinInt64
)

// Quota represents server-reported storage figures for a user
type Quota struct {
	Free     int64   `json:"free"`
	Used     int64   `json:"used"`
	Total    int64   `json:"total"`
	Relative float64 `json:"relative"`
	Limit    int64   `json:"quota"`
}

// HasLimit returns true if the server reported a concrete quota limit
func (q *Quota) HasLimit() bool {
	return q.Limit >= 0
}

// IsUnlimited returns true if the server reported an unlimited quota
func (q *Quota) IsUnlimited() bool {
	return q.Limit == SpaceUnlimited || q.Total == SpaceUnlimited || q.Free == SpaceUnlimited
}

// LimitAvailable returns false for servers without quota limit support
func (q *Quota) LimitAvailable() bool {
	return q.Limit != QuotaLimitNotAvailable
}

// UserInfo represents the metadata of a user account on an OCS server.
// Optional string fields are empty when the server did not report them.
type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display-name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Website     string `json:"website,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
	Quota       *Quota `json:"quota,omitempty"`
}

// IsEnabled returns the enabled flag and whether the server reported it
func (u *UserInfo) IsEnabled() (enabled bool, known bool) {
	if u.Enabled == nil {
		return false, false
	}
	return *u.Enabled, true
}

// Snapshot is a fetched UserInfo recorded at a point in time
type Snapshot struct {
	ID        int64
	Server    string
	FetchedAt time.Time
	Info      *UserInfo
}
