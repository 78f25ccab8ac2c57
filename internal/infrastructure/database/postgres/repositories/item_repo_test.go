package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

type ItemRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo monitoring.ItemRepository
}

func (s *ItemRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.NoError(err)

	conn := postgres.NewConnectionWithDB(s.db, logging.NewNopLogger())
	s.repo = NewPostgresItemRepo(conn, logging.NewNopLogger())
}

func (s *ItemRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func itemRows(items ...*monitoring.MonitoringItem) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "type", "keywords", "frequency", "status", "last_checked", "next_check",
		"alert_count", "last_error", "extensions", "platforms", "social_platforms", "created_at", "updated_at",
	})
	for _, item := range items {
		keywords, _ := encodeStrings(item.Keywords)
		extensions, _ := encodeStrings(item.Extensions)
		platforms, _ := encodeStrings(item.Platforms)
		socialPlatforms, _ := encodeStrings(item.SocialPlatforms)
		rows.AddRow(item.ID, item.Name, item.Type, keywords, item.Frequency, item.Status,
			item.LastChecked, item.NextCheck, item.AlertCount, item.LastError,
			extensions, platforms, socialPlatforms, item.CreatedAt, item.UpdatedAt)
	}
	return rows
}

func sampleItem(s *ItemRepoTestSuite) *monitoring.MonitoringItem {
	item, err := monitoring.NewMonitoringItem("Zynth brand", monitoring.ItemTypeTrademark,
		[]string{"Zynth", "Zynth Tech"}, monitoring.FrequencyDaily)
	s.Require().NoError(err)
	return item
}

func (s *ItemRepoTestSuite) TestCreate() {
	item := sampleItem(s)

	s.mock.ExpectExec("INSERT INTO monitoring_items").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Create(context.Background(), item))
}

func (s *ItemRepoTestSuite) TestGetByID() {
	item := sampleItem(s)

	s.mock.ExpectQuery("SELECT (.+) FROM monitoring_items WHERE id").
		WithArgs(item.ID).
		WillReturnRows(itemRows(item))

	got, err := s.repo.GetByID(context.Background(), item.ID)
	s.NoError(err)
	s.Equal(item.ID, got.ID)
	s.Equal([]string{"Zynth", "Zynth Tech"}, got.Keywords)
	s.Equal(monitoring.StatusActive, got.Status)
}

func (s *ItemRepoTestSuite) TestGetByIDNotFound() {
	s.mock.ExpectQuery("SELECT (.+) FROM monitoring_items WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.repo.GetByID(context.Background(), "missing")
	s.True(errors.IsNotFound(err))
}

func (s *ItemRepoTestSuite) TestListWithFilters() {
	item := sampleItem(s)

	s.mock.ExpectQuery("SELECT COUNT").
		WithArgs(monitoring.ItemTypeTrademark).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery("SELECT (.+) FROM monitoring_items").
		WithArgs(monitoring.ItemTypeTrademark, 20, 0).
		WillReturnRows(itemRows(item))

	items, total, err := s.repo.List(context.Background(), monitoring.WithType(monitoring.ItemTypeTrademark))
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Len(items, 1)
}

func (s *ItemRepoTestSuite) TestListDue() {
	item := sampleItem(s)
	now := time.Now().UTC()

	s.mock.ExpectQuery("SELECT (.+) FROM monitoring_items").
		WithArgs(now, 10).
		WillReturnRows(itemRows(item))

	due, err := s.repo.ListDue(context.Background(), now, 10)
	s.NoError(err)
	s.Len(due, 1)
}

func (s *ItemRepoTestSuite) TestUpdate() {
	item := sampleItem(s)
	item.Status = monitoring.StatusActive
	item.AlertCount = 3

	s.mock.ExpectExec("UPDATE monitoring_items").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Update(context.Background(), item))
}

func (s *ItemRepoTestSuite) TestUpdateNotFound() {
	item := sampleItem(s)

	s.mock.ExpectExec("UPDATE monitoring_items").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.Update(context.Background(), item)
	s.True(errors.IsCode(err, errors.ErrCodeItemNotFound))
}

func (s *ItemRepoTestSuite) TestUpdateStatusWithError() {
	msg := "registry unreachable"

	s.mock.ExpectExec("UPDATE monitoring_items SET status").
		WithArgs(monitoring.StatusError, msg, "item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.UpdateStatus(context.Background(), "item-1", monitoring.StatusError, &msg))
}

func (s *ItemRepoTestSuite) TestUpdateStatusWithoutError() {
	s.mock.ExpectExec("UPDATE monitoring_items SET status").
		WithArgs(monitoring.StatusChecking, "item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.UpdateStatus(context.Background(), "item-1", monitoring.StatusChecking, nil))
}

func (s *ItemRepoTestSuite) TestDelete() {
	s.mock.ExpectExec("DELETE FROM monitoring_items").
		WithArgs("item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Delete(context.Background(), "item-1"))
}

func (s *ItemRepoTestSuite) TestDeleteNotFound() {
	s.mock.ExpectExec("DELETE FROM monitoring_items").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.Delete(context.Background(), "missing")
	s.True(errors.IsNotFound(err))
}

func TestItemRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ItemRepoTestSuite))
}
