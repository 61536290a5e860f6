package userinfo

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vertextoedge/ocs-userinfo/internal/domain"
)

// parseUserInfo maps an OCS user response body to a UserInfo.
// fallbackID is used when the payload carries no id.
func parseUserInfo(body []byte, fallbackID string, logger *zap.Logger) (*domain.UserInfo, error) {
	var root object
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	ocs, err := root.child(nodeOCS)
	if err != nil {
		return nil, err
	}
	data, err := ocs.child(nodeData)
	if err != nil {
		return nil, err
	}

	info := &domain.UserInfo{}

	// Very old servers and the per-user endpoint may omit the id
	id, ok := data.lookupOptionalText([]string{nodeID})
	if !ok {
		id = fallbackID
	}
	info.ID = id

	displayName, ok, err := data.lookupText(displayNameKeys)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errMissingDisplayName
	}
	info.DisplayName = displayName

	for _, f := range optionalFields {
		if v, ok := data.lookupOptionalText(f.keys); ok {
			f.set(info, v)
		}
	}

	if data.has(nodeEnabled) {
		enabled, err := boolValue(data[nodeEnabled])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", nodeEnabled, err)
		}
		info.Enabled = &enabled
	}

	if data.has(nodeQuota) {
		quota, err := parseQuota(data[nodeQuota], logger)
		if err != nil {
			return nil, err
		}
		info.Quota = quota
	}

	return info, nil
}

// parseQuota reads the quota object. The limit is optional and falls back
// to QuotaLimitNotAvailable.
func parseQuota(raw json.RawMessage, logger *zap.Logger) (*domain.Quota, error) {
	obj, err := decodeObject(raw, nodeQuota)
	if err != nil {
		return nil, err
	}

	free, err := obj.requiredInt64(nodeQuotaFree)
	if err != nil {
		return nil, fmt.Errorf("quota: %w", err)
	}
	used, err := obj.requiredInt64(nodeQuotaUsed)
	if err != nil {
		return nil, fmt.Errorf("quota: %w", err)
	}
	total, err := obj.requiredInt64(nodeQuotaTotal)
	if err != nil {
		return nil, fmt.Errorf("quota: %w", err)
	}
	if !obj.has(nodeQuotaRelative) {
		return nil, fmt.Errorf("quota: missing %q", nodeQuotaRelative)
	}
	relative, err := float64Value(obj[nodeQuotaRelative])
	if err != nil {
		return nil, fmt.Errorf("quota: field %q: %w", nodeQuotaRelative, err)
	}

	limit := domain.QuotaLimitNotAvailable
	if obj.has(nodeQuotaLimit) {
		if v, err := int64Value(obj[nodeQuotaLimit]); err == nil {
			limit = v
		}
	}
	if limit == domain.QuotaLimitNotAvailable {
		logger.Info("legacy server in use, quota limit not reported")
	}

	return &domain.Quota{
		Free:     free,
		Used:     used,
		Total:    total,
		Relative: relative,
		Limit:    limit,
	}, nil
}
