package domain

const (
	RoleCollector = "COLLECTOR"
	RoleAdmin     = "ADMIN"
)

const (
	CollectionStatusPending  = "pending"
	CollectionStatusApproved = "approved"
	CollectionStatusRejected = "rejected"
)

const (
	WithdrawalStatusPending    = "pending"
	WithdrawalStatusApproved   = "approved"
	WithdrawalStatusProcessing = "processing"
	WithdrawalStatusCompleted  = "completed"
	WithdrawalStatusRejected   = "rejected"
)

const (
	TxTypeWithdrawal         = "withdrawal"
	TxTypeCollectionApproval = "collection_approval"
	TxTypeAdjustment         = "adjustment"
)

const (
	QueueStatusPending   = "pending"
	QueueStatusProcessed = "processed"
	QueueStatusFailed    = "failed"
)

const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// Material types accepted at drop-off points.
const (
	MaterialPlastic = "plastic"
	MaterialPaper   = "paper"
	MaterialGlass   = "glass"
	MaterialMetal   = "metal"
	MaterialEwaste  = "ewaste"
	MaterialOrganic = "organic"
)
