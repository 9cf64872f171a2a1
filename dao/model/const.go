// Shared enum types backing the database status columns.
// Enum values are stored as short strings so the tables stay readable
// when inspected with psql.
package model

// User role on the platform.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager" // property manager, posts projects
	RoleVendor  Role = "vendor"  // service vendor, submits bids
)

// User account status.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Project lifecycle status. Only Open projects accept new bids.
type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "Draft"
	ProjectOpen       ProjectStatus = "Open"
	ProjectInReview   ProjectStatus = "InReview"
	ProjectAwarded    ProjectStatus = "Awarded"
	ProjectInProgress ProjectStatus = "InProgress"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
)

// Bid lifecycle status. Pending is the only non-terminal state.
type BidStatus string

const (
	BidPending   BidStatus = "Pending"
	BidAccepted  BidStatus = "Accepted"
	BidRejected  BidStatus = "Rejected"
	BidWithdrawn BidStatus = "Withdrawn"
)

// Notification type tag, used by the frontend to pick an icon and route.
type NotificationType string

const (
	NotifyBidSubmitted NotificationType = "bid_submitted"
	NotifyBidAccepted  NotificationType = "bid_accepted"
	NotifyBidRejected  NotificationType = "bid_rejected"
	NotifyBidWithdrawn NotificationType = "bid_withdrawn"
	NotifyMessage      NotificationType = "message"
)
