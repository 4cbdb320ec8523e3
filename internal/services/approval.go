package services

import "bus_tracker/internal/models"

// ApprovalQuery is the list filter shared by vehicles and routes. Admins
// may narrow by state; Mine switches a driver to their own proposals.
type ApprovalQuery struct {
	Pending  bool
	Approved bool
	Rejected bool
	Mine     bool
}

func (q ApprovalQuery) status() *models.ApprovalStatus {
	var s models.ApprovalStatus
	switch {
	case q.Pending:
		s = models.ApprovalPending
	case q.Approved:
		s = models.ApprovalApproved
	case q.Rejected:
		s = models.ApprovalRejected
	default:
		return nil
	}
	return &s
}

func approvedOnly() *models.ApprovalStatus {
	s := models.ApprovalApproved
	return &s
}
