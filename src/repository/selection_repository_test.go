package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

func TestSelectionRepositoryReplaceAll(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&SelectionRepository{}).WithDB(mockDB)

	selections := []model.StrategySelection{
		{BatchID: "batch-1", StrategyName: "momentum", Symbol: "AAPL", Mode: model.ModeMain, Score: 142.5},
		{BatchID: "batch-1", StrategyName: "meanrev", Symbol: "MSFT", Mode: model.ModeShadow, Score: 120.0},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "strategy_selections" WHERE 1 = 1`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "strategy_selections"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	if err := repo.ReplaceAll(context.Background(), selections); err != nil {
		t.Fatalf("expected replace to succeed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSelectionRepositoryReplaceAllEmptySetOnlyDeletes(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&SelectionRepository{}).WithDB(mockDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "strategy_selections" WHERE 1 = 1`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := repo.ReplaceAll(context.Background(), nil); err != nil {
		t.Fatalf("expected replace with empty set to succeed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
