package eligibility

import (
	"time"

	"github.com/MelvinKr/skybh/crew-compliance/internal/domain/models"
)

// CrewMemberStatus reduces a member to a single badge with the default policy.
func CrewMemberStatus(member *models.CrewMember, quals *models.Qualifications, ftlResult *models.ComplianceResult, reference time.Time) models.CrewStatus {
	return DefaultPolicy().CrewMemberStatus(member, quals, ftlResult, reference)
}

// CrewMemberStatus: inactive beats an expired qualification, which beats a
// critical FTL risk. Missing qualifications count as expired.
func (p Policy) CrewMemberStatus(member *models.CrewMember, quals *models.Qualifications, ftlResult *models.ComplianceResult, reference time.Time) models.CrewStatus {
	if member == nil || !member.Active {
		return models.CrewStatusInactive
	}

	var q models.Qualifications
	if quals != nil {
		q = *quals
	}
	if p.ExpiryStatus(q.MedicalExpiry, reference) == models.QualificationExpired ||
		p.ExpiryStatus(q.LicenseExpiry, reference) == models.QualificationExpired ||
		p.SimCheckStatus(q.LastSimCheck, reference) == models.QualificationExpired {
		return models.CrewStatusCritical
	}

	if ftlResult != nil && ftlResult.RiskLevel == models.RiskCritical {
		return models.CrewStatusWarning
	}
	return models.CrewStatusOK
}
