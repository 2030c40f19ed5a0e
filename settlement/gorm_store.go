package settlement

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// gormStore implements Store on the application database.
type gormStore struct {
	db *gorm.DB
}

// NewStore builds the production Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindPaymentByTransactionID(txnID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Where("razorpay_payment_id = ?", txnID).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *gormStore) CoursesForRequest(userID uint, isCart bool, courseID uint) ([]models.Course, error) {
	if isCart {
		return utils.CartCourses(s.db, userID)
	}
	var course models.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCourseNotFound
		}
		return nil, err
	}
	return []models.Course{course}, nil
}

func (s *gormStore) ValidateCoupon(code string, baseAmount float64, userID uint) (*models.Coupon, float64, error) {
	return utils.ValidateCoupon(s.db, code, baseAmount, userID)
}

func (s *gormStore) RedeemCoupon(userID uint, coupon *models.Coupon) error {
	return utils.RedeemCoupon(s.db, userID, coupon)
}

func (s *gormStore) ReleaseCouponUsage(userID, couponID uint) error {
	return utils.ReleaseCouponUsage(s.db, userID, couponID)
}

func (s *gormStore) DebitWallet(userID uint, amount float64, description, reference string) (*models.WalletTransaction, error) {
	return utils.DebitWallet(s.db, userID, amount, description, reference)
}

func (s *gormStore) CreditWallet(userID uint, amount float64, description, reference string) (*models.WalletTransaction, error) {
	return utils.CreditWallet(s.db, userID, amount, description, reference)
}

func (s *gormStore) Enroll(userID, courseID uint) (bool, error) {
	return utils.EnrollUserInCourse(s.db, userID, courseID)
}

func (s *gormStore) CreatePayment(payment *models.Payment) error {
	if err := s.db.Create(payment).Error; err != nil {
		if isDuplicateKey(err) {
			return models.ErrDuplicatePayment
		}
		return err
	}
	return nil
}

func (s *gormStore) ClearCart(userID uint) error {
	return utils.ClearCart(s.db, userID)
}

// isDuplicateKey matches the unique-constraint violation the payments
// table raises for a replayed gateway transaction id. gorm translates
// it on postgres; the message check covers drivers that do not.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}
