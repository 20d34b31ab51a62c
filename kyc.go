package bankxlive

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
)

type DocumentType string

const (
	DocPassport       DocumentType = "passport"
	DocDriverLicense  DocumentType = "driver_license"
	DocNationalID     DocumentType = "national_id"
	MaxDocumentImgLen              = 5 << 20
)

func (d DocumentType) Valid() bool {
	switch d {
	case DocPassport, DocDriverLicense, DocNationalID:
		return true
	}
	return false
}

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

type KYCDocument struct {
	ID              snowflake.ID `json:"id"`
	AcctID          string       `json:"accountNumber"`
	DocumentType    DocumentType `json:"documentType"`
	DocumentNumber  string       `json:"documentNumber"`
	DocumentImage   string       `json:"documentImage,omitempty"`
	Status          KYCStatus    `json:"status"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       *time.Time   `json:"updatedAt,omitempty"`
}

type KYCStore struct {
	mu     sync.RWMutex
	node   *snowflake.Node
	docs   []*KYCDocument
	byID   map[snowflake.ID]*KYCDocument
	closed *atomic.Bool
	clock  func() time.Time
}

func newKYCStore(node *snowflake.Node, closed *atomic.Bool) *KYCStore {
	return &KYCStore{
		node:   node,
		byID:   make(map[snowflake.ID]*KYCDocument),
		closed: closed,
		clock:  time.Now,
	}
}

func (k *KYCStore) Submit(doc KYCDocument) (*KYCDocument, error) {
	if k.closed.Load() {
		return nil, ErrStoreClosed
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	d := doc
	d.ID = k.node.Generate()
	d.Status = KYCPending
	d.RejectionReason = ""
	d.CreatedAt = k.clock().UTC()
	d.UpdatedAt = nil
	k.docs = append(k.docs, &d)
	k.byID[d.ID] = &d
	cp := d
	return &cp, nil
}

func (k *KYCStore) ByAccount(acctID string) ([]KYCDocument, error) {
	return k.filter(func(d *KYCDocument) bool { return d.AcctID == acctID })
}

func (k *KYCStore) Pending() ([]KYCDocument, error) {
	return k.filter(func(d *KYCDocument) bool { return d.Status == KYCPending })
}

func (k *KYCStore) filter(keep func(*KYCDocument) bool) ([]KYCDocument, error) {
	if k.closed.Load() {
		return nil, ErrStoreClosed
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]KYCDocument, 0)
	for _, d := range k.docs {
		if keep(d) {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Review settles a pending document. Reviewed documents are final.
func (k *KYCStore) Review(id snowflake.ID, status KYCStatus, reason string) (*KYCDocument, error) {
	if k.closed.Load() {
		return nil, ErrStoreClosed
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	d, ok := k.byID[id]
	if !ok {
		return nil, ErrNotFound{Resource: "kyc document", ID: id.String()}
	}
	if d.Status != KYCPending {
		return nil, ErrConflict{Resource: "kyc review", Key: id.String()}
	}
	now := k.clock().UTC()
	d.Status = status
	d.RejectionReason = reason
	d.UpdatedAt = &now
	cp := *d
	return &cp, nil
}
