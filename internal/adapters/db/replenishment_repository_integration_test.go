//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ldessureault/chainstore-be/internal/adapters/db"
	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
	"github.com/ldessureault/chainstore-be/test/helpers"
)

type ReplenishmentRepositorySuite struct {
	suite.Suite
	testDB    *helpers.TestDB
	repo      ports.ReplenishmentRepository
	stockRepo ports.StockRepository
	ctx       context.Context

	storeID     int64
	warehouseID int64
	productID   int64
}

func (s *ReplenishmentRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewReplenishmentRepository(s.testDB.Database, helpers.TestLogger())
	s.stockRepo = db.NewStockRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *ReplenishmentRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.storeID = helpers.SeedTestStore(s.T(), s.testDB.PgxPool, "Downtown", domain.StoreTypeSales)
	s.warehouseID = helpers.SeedTestStore(s.T(), s.testDB.PgxPool, "Central Warehouse", domain.StoreTypeLogistics)
	s.productID = helpers.SeedTestProduct(s.T(), s.testDB.PgxPool, "Espresso Beans 1kg", decimal.NewFromFloat(18.50))
	helpers.SeedTestStock(s.T(), s.testDB.PgxPool, s.warehouseID, s.productID, 50)
}

func (s *ReplenishmentRepositorySuite) newRequest(qty int) *domain.ReplenishmentRequest {
	req := &domain.ReplenishmentRequest{
		StoreID:   s.storeID,
		ProductID: s.productID,
		Quantity:  qty,
		Status:    domain.ReplenishmentPending,
	}
	s.Require().NoError(s.repo.Save(s.ctx, req))
	return req
}

func (s *ReplenishmentRepositorySuite) TestSave() {
	req := s.newRequest(30)
	s.NotZero(req.ID)
	s.NotZero(req.CreatedAt)

	found, err := s.repo.FindByID(s.ctx, req.ID)
	s.NoError(err)
	s.Equal(domain.ReplenishmentPending, found.Status)
	s.Equal(30, found.Quantity)
}

func (s *ReplenishmentRepositorySuite) TestFindByID_NotFound() {
	_, err := s.repo.FindByID(s.ctx, 99999)
	s.ErrorIs(err, domain.ErrReplenishmentNotFound)
}

func (s *ReplenishmentRepositorySuite) TestFindByStatus_OldestFirst() {
	first := s.newRequest(10)
	second := s.newRequest(20)

	pending, err := s.repo.FindByStatus(s.ctx, domain.ReplenishmentPending)
	s.NoError(err)
	s.Len(pending, 2)
	s.Equal(first.ID, pending[0].ID)
	s.Equal(second.ID, pending[1].ID)
}

func (s *ReplenishmentRepositorySuite) TestApprove_TransfersStock() {
	req := s.newRequest(30)

	approved, err := s.repo.Approve(s.ctx, req.ID, s.warehouseID)
	s.NoError(err)
	s.Equal(domain.ReplenishmentApproved, approved.Status)

	source, err := s.stockRepo.Find(s.ctx, s.warehouseID, s.productID)
	s.NoError(err)
	s.Equal(20, source.Quantity)

	dest, err := s.stockRepo.Find(s.ctx, s.storeID, s.productID)
	s.NoError(err)
	s.Equal(30, dest.Quantity)
}

func (s *ReplenishmentRepositorySuite) TestApprove_ExactlyOnce() {
	req := s.newRequest(10)

	_, err := s.repo.Approve(s.ctx, req.ID, s.warehouseID)
	s.NoError(err)

	_, err = s.repo.Approve(s.ctx, req.ID, s.warehouseID)
	s.ErrorIs(err, domain.ErrRequestNotPending)

	// No second transfer happened
	source, err := s.stockRepo.Find(s.ctx, s.warehouseID, s.productID)
	s.NoError(err)
	s.Equal(40, source.Quantity)
}

func (s *ReplenishmentRepositorySuite) TestApprove_InsufficientCentralStockStaysPending() {
	req := s.newRequest(80)

	_, err := s.repo.Approve(s.ctx, req.ID, s.warehouseID)
	s.True(domain.IsInsufficientStock(err))

	// The status flip rolled back with the failed transfer
	found, err := s.repo.FindByID(s.ctx, req.ID)
	s.NoError(err)
	s.Equal(domain.ReplenishmentPending, found.Status)

	source, err := s.stockRepo.Find(s.ctx, s.warehouseID, s.productID)
	s.NoError(err)
	s.Equal(50, source.Quantity)
}

func (s *ReplenishmentRepositorySuite) TestApprove_NotFound() {
	_, err := s.repo.Approve(s.ctx, 99999, s.warehouseID)
	s.ErrorIs(err, domain.ErrReplenishmentNotFound)
}

func (s *ReplenishmentRepositorySuite) TestReject() {
	req := s.newRequest(30)

	rejected, err := s.repo.Reject(s.ctx, req.ID)
	s.NoError(err)
	s.Equal(domain.ReplenishmentRejected, rejected.Status)

	// Rejection moves no stock
	source, err := s.stockRepo.Find(s.ctx, s.warehouseID, s.productID)
	s.NoError(err)
	s.Equal(50, source.Quantity)

	// A settled request cannot be rejected again
	_, err = s.repo.Reject(s.ctx, req.ID)
	s.ErrorIs(err, domain.ErrRequestNotPending)
}

func TestReplenishmentRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(ReplenishmentRepositorySuite))
}
