package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
)

// BlockchainRecord represents the blockchain_records table - an append-only
// log of every successful ledger interaction. Rows are never updated after insert.
type BlockchainRecord struct {
	// ID is the internal database primary key
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// UserID is the user the recorded payload belongs to
	UserID uint64 `gorm:"column:user_id;not null;index"`
	// TransactionHash is the ledger transaction reference
	TransactionHash string `gorm:"column:transaction_hash;not null;uniqueIndex;type:text"`
	// BlockNumber is the block the transaction landed in
	BlockNumber int64 `gorm:"column:block_number;not null"`
	// ContractAddress is the contract the record was written against
	ContractAddress string `gorm:"column:contract_address;not null;type:text"`
	// DataHash is the fingerprint of the recorded payload, used for verification
	DataHash string `gorm:"column:data_hash;not null;type:text"`
	// DataType identifies what kind of payload was fingerprinted
	DataType domain.LedgerDataType `gorm:"column:data_type;not null;type:text"`
	// TransactionData is a snapshot of the payload at recording time
	TransactionData datatypes.JSON `gorm:"column:transaction_data;type:jsonb"`
	// CreatedAt is the timestamp when the interaction was logged
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the BlockchainRecord model
func (BlockchainRecord) TableName() string {
	return "blockchain_records"
}
