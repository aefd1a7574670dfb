package orderstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	swishpay "github.com/commercekit/swishpay"
)

// OrderModel is the persisted order row.
type OrderModel struct {
	gorm.Model
	OrderID     string `gorm:"uniqueIndex;size:64"`
	TrackingKey string `gorm:"uniqueIndex;size:64"`

	PaymentMethod string `gorm:"size:32"`
	Total         string `gorm:"size:32"`
	Currency      string `gorm:"size:8"`

	TransactionStatus   string `gorm:"size:32"`
	TransactionID       string `gorm:"size:64"`
	TransactionLocation string `gorm:"size:255"`
	PaymentReference    string `gorm:"size:64"`
	MerchantAlias       string `gorm:"size:32"`
	RefundID            string `gorm:"size:64"`
	MethodSwitched      bool

	Workflow string `gorm:"size:20;default:'pending'"`
	PaidAt   *time.Time

	ReturnURL   string `gorm:"size:255"`
	CheckoutURL string `gorm:"size:255"`
}

// OrderNote is one audit-trail entry for an order.
type OrderNote struct {
	gorm.Model
	OrderID string `gorm:"index;size:64"`
	Text    string `gorm:"size:255"`
}

// Open connects to MySQL and migrates the order tables.
func Open(user, password, host string, port int, dbname string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&OrderModel{}, &OrderNote{}); err != nil {
		return nil, err
	}
	return db, nil
}

// DBStore serves order records from a gorm database.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore wraps an open database.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// Create inserts a new order row.
func (s *DBStore) Create(ctx context.Context, m *OrderModel) error {
	if m.PaymentMethod == "" {
		m.PaymentMethod = swishpay.PaymentMethodID
	}
	if m.TrackingKey == "" {
		m.TrackingKey = "wc_order_" + m.OrderID
	}
	return s.db.WithContext(ctx).Create(m).Error
}

// Get returns the order with the given id.
func (s *DBStore) Get(ctx context.Context, orderID string) (swishpay.OrderRecord, error) {
	var m OrderModel
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&m).Error; err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	return &dbOrder{db: s.db, m: &m}, nil
}

// GetByTrackingKey resolves the checkout-pay URL key to its order.
func (s *DBStore) GetByTrackingKey(ctx context.Context, key string) (swishpay.OrderRecord, error) {
	var m OrderModel
	if err := s.db.WithContext(ctx).Where("tracking_key = ?", key).First(&m).Error; err != nil {
		return nil, fmt.Errorf("order key %s: %w", key, err)
	}
	return &dbOrder{db: s.db, m: &m}, nil
}

var _ swishpay.OrderStore = (*DBStore)(nil)

// dbOrder applies mutations to the row in memory; Save flushes the row and
// any accumulated notes in one transaction.
type dbOrder struct {
	db    *gorm.DB
	m     *OrderModel
	notes []string
}

func (o *dbOrder) ID() string { return o.m.OrderID }
func (o *dbOrder) PaymentMethod() string { return o.m.PaymentMethod }
func (o *dbOrder) Amount() string { return o.m.Total }
func (o *dbOrder) Currency() string { return o.m.Currency }

func (o *dbOrder) Status() swishpay.TransactionStatus {
	return swishpay.TransactionStatus(o.m.TransactionStatus)
}
func (o *dbOrder) SetStatus(s swishpay.TransactionStatus) { o.m.TransactionStatus = string(s) }

func (o *dbOrder) TransactionID() string { return o.m.TransactionID }
func (o *dbOrder) SetTransactionID(id string) { o.m.TransactionID = id }
func (o *dbOrder) TransactionLocation() string { return o.m.TransactionLocation }
func (o *dbOrder) SetTransactionLocation(l string) { o.m.TransactionLocation = l }
func (o *dbOrder) PaymentReference() string { return o.m.PaymentReference }
func (o *dbOrder) SetPaymentReference(r string) { o.m.PaymentReference = r }
func (o *dbOrder) MerchantAlias() string { return o.m.MerchantAlias }
func (o *dbOrder) SetMerchantAlias(a string) { o.m.MerchantAlias = a }
func (o *dbOrder) RefundID() string { return o.m.RefundID }
func (o *dbOrder) SetRefundID(id string) { o.m.RefundID = id }
func (o *dbOrder) MethodSwitched() bool { return o.m.MethodSwitched }
func (o *dbOrder) SetMethodSwitched(v bool) { o.m.MethodSwitched = v }

func (o *dbOrder) Note(text string) { o.notes = append(o.notes, text) }

func (o *dbOrder) MarkPaid() {
	now := time.Now()
	o.m.PaidAt = &now
	o.m.Workflow = "processing"
}

func (o *dbOrder) UpdateStatus(s swishpay.WorkflowState) { o.m.Workflow = string(s) }

func (o *dbOrder) ReturnURL() string { return o.m.ReturnURL }
func (o *dbOrder) CheckoutPaymentURL() string { return o.m.CheckoutURL }

func (o *dbOrder) Save() error {
	return o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(o.m).Error; err != nil {
			return err
		}
		for _, text := range o.notes {
			if err := tx.Create(&OrderNote{OrderID: o.m.OrderID, Text: text}).Error; err != nil {
				return err
			}
		}
		o.notes = nil
		return nil
	})
}

var _ swishpay.OrderRecord = (*dbOrder)(nil)
