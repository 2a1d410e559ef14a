package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepages/salary-cli/internal/model"
)

func newMockUpserter(t *testing.T) (*Upserter, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUpserter(mock), mock
}

func nationalObs() model.SalaryObservation {
	emp := int64(3175390)
	median := 90010.0
	return model.SalaryObservation{
		OccupationKeyword: "registered-nurses",
		Year:              2024,
		Source:            "BLS",
		EmploymentCount:   &emp,
		AnnualMedian:      &median,
	}
}

func TestUpsert_PrimaryPath(t *testing.T) {
	up, mock := newMockUpserter(t)

	mock.ExpectExec(`INSERT INTO salary_observations`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := up.Upsert(context.Background(), nationalObs())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_Idempotent_SecondRunUpdates(t *testing.T) {
	up, mock := newMockUpserter(t)

	mock.ExpectExec(`ON CONFLICT \(occupation_keyword, location_key, year\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`ON CONFLICT \(occupation_keyword, location_key, year\) DO UPDATE`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	obs := nationalObs()
	require.NoError(t, up.Upsert(context.Background(), obs))
	require.NoError(t, up.Upsert(context.Background(), obs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_NationalFallbackOnMissingConflictTarget(t *testing.T) {
	up, mock := newMockUpserter(t)

	mock.ExpectExec(`INSERT INTO salary_observations`).
		WillReturnError(errors.New("ERROR: there is no unique or exclusion constraint matching the ON CONFLICT specification (SQLSTATE 42P10)"))
	mock.ExpectQuery(`SELECT id FROM salary_observations`).
		WithArgs("registered-nurses", 2024).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO salary_observations`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := up.Upsert(context.Background(), nationalObs())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_LocatedRowDoesNotFallBack(t *testing.T) {
	up, mock := newMockUpserter(t)

	mock.ExpectExec(`INSERT INTO salary_observations`).
		WillReturnError(errors.New("ERROR: there is no unique or exclusion constraint matching the ON CONFLICT specification (SQLSTATE 42P10)"))

	obs := nationalObs()
	locID := "loc-1"
	obs.LocationID = &locID

	err := up.Upsert(context.Background(), obs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert observation registered-nurses/loc-1/2024")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_RetriesTransientError(t *testing.T) {
	up, mock := newMockUpserter(t)

	mock.ExpectExec(`INSERT INTO salary_observations`).
		WillReturnError(errors.New("read tcp: connection reset by peer"))
	mock.ExpectExec(`INSERT INTO salary_observations`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := up.Upsert(context.Background(), nationalObs())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertNational_UpdatesExistingRow(t *testing.T) {
	up, mock := newMockUpserter(t)

	mock.ExpectQuery(`SELECT id FROM salary_observations`).
		WithArgs("registered-nurses", 2024).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("obs-1"))
	mock.ExpectExec(`UPDATE salary_observations`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := up.UpsertNational(context.Background(), nationalObs())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertNational_InsertsWhenAbsent(t *testing.T) {
	up, mock := newMockUpserter(t)

	mock.ExpectQuery(`SELECT id FROM salary_observations`).
		WithArgs("registered-nurses", 2024).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO salary_observations`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := up.UpsertNational(context.Background(), nationalObs())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertBatch_Empty(t *testing.T) {
	up, _ := newMockUpserter(t)
	n, err := up.UpsertBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUpsertBatch_DedupesWithinBatch(t *testing.T) {
	up, mock := newMockUpserter(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_salary_observations"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_salary_observations"}, obsColumns).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "salary_observations"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	first := nationalObs()
	duplicate := nationalObs() // same keyword/scope/year, should collapse
	other := nationalObs()
	other.OccupationKeyword = "nurse-practitioners"

	n, err := up.UpsertBatch(context.Background(), []model.SalaryObservation{first, duplicate, other})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsMissingConflictTarget(t *testing.T) {
	assert.True(t, isMissingConflictTarget(errors.New("there is no unique or exclusion constraint matching the ON CONFLICT specification")))
	assert.True(t, isMissingConflictTarget(errors.New(`column "location_key" does not exist`)))
	assert.False(t, isMissingConflictTarget(errors.New("duplicate key value violates unique constraint")))
}
