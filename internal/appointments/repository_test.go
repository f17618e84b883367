package appointments

import (
	"context"
	"errors"
	"testing"

	"clinic-scheduler/internal/mock"

	"github.com/DATA-DOG/go-sqlmock"
)

var appointmentColumns = []string{"id", "doctor_id", "patient_id", "patient_name", "patient_email", "patient_phone", "date", "time", "status", "symptoms", "type"}

func appointmentRows() *sqlmock.Rows {
	return sqlmock.NewRows(appointmentColumns).
		AddRow("1", "1", "1", "Alice Johnson", "patient@example.com", "+1234567891", "2099-01-20", "10:00", "pending", "Headache", "consultation").
		AddRow("2", "1", "2", "Bob Smith", "bob@example.com", "", "2099-01-20", "14:00", "confirmed", "Back pain", "follow-up")
}

func TestRepositoryListByDoctor(t *testing.T) {
	tests := []struct {
		name    string
		dbConn  mock.Connection
		opts    []mock.DBResultOption
		want    []string
		wantErr bool
	}{
		{
			name:   "should list the doctor's appointments",
			dbConn: mock.MustCreateConnectionMock(),
			opts:   []mock.DBResultOption{mock.WithQueryRows(listByDoctorQuery, appointmentRows(), "1")},
			want:   []string{"1", "2"},
		},
		{
			name:   "should return an empty list",
			dbConn: mock.MustCreateConnectionMock(),
			opts:   []mock.DBResultOption{mock.WithQueryRows(listByDoctorQuery, sqlmock.NewRows(appointmentColumns), "1")},
			want:   []string{},
		},
		{
			name:    "should return database errors",
			dbConn:  mock.MustCreateConnectionMock(),
			opts:    []mock.DBResultOption{mock.WithQueryError(listByDoctorQuery, errors.New("connection reset"))},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.dbConn.Close()
			mock.MockDBResults(tt.dbConn, tt.opts...)
			got, err := NewRepository(tt.dbConn).ListByDoctor(context.Background(), "1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ListByDoctor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			gotIDs := ids(got)
			if len(gotIDs) != len(tt.want) {
				t.Fatalf("ListByDoctor() = %v, want %v", gotIDs, tt.want)
			}
			for i := range tt.want {
				if gotIDs[i] != tt.want[i] {
					t.Errorf("ListByDoctor()[%d] = %s, want %s", i, gotIDs[i], tt.want[i])
				}
			}
			if len(got) > 1 && (got[1].Type != TypeFollowUp || got[1].Status != StatusConfirmed) {
				t.Errorf("ListByDoctor()[1] = %+v", got[1])
			}
			if err = tt.dbConn.SQLMock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestRepositoryGet(t *testing.T) {
	tests := []struct {
		name    string
		dbConn  mock.Connection
		opts    []mock.DBResultOption
		wantErr error
	}{
		{
			name:   "should find the appointment",
			dbConn: mock.MustCreateConnectionMock(),
			opts:   []mock.DBResultOption{mock.WithQueryRows(findAppointmentQuery, appointmentRows(), "1")},
		},
		{
			name:    "should report a missing appointment",
			dbConn:  mock.MustCreateConnectionMock(),
			opts:    []mock.DBResultOption{mock.WithQueryRows(findAppointmentQuery, sqlmock.NewRows(appointmentColumns), "1")},
			wantErr: ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.dbConn.Close()
			mock.MockDBResults(tt.dbConn, tt.opts...)
			got, err := NewRepository(tt.dbConn).Get(context.Background(), "1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Get() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (got.ID != "1" || got.PatientName != "Alice Johnson") {
				t.Errorf("Get() = %+v", got)
			}
		})
	}
}

func TestRepositoryCreate(t *testing.T) {
	dbConn := mock.MustCreateConnectionMock()
	defer dbConn.Close()
	mock.MockDBResults(dbConn, mock.WithExecResult(
		insertAppointmentQuery,
		sqlmock.NewResult(0, 1),
		sqlmock.AnyArg(), "1", "1", "Alice Johnson", "patient@example.com", "", "2099-01-20", "10:00", StatusPending, "Headache", TypeConsultation,
	))
	got, err := NewRepository(dbConn).Create(context.Background(), Appointment{
		DoctorID:     "1",
		PatientID:    "1",
		PatientName:  "Alice Johnson",
		PatientEmail: "patient@example.com",
		Date:         "2099-01-20",
		Time:         "10:00",
		Status:       StatusConfirmed,
		Symptoms:     "Headache",
		Type:         TypeConsultation,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.ID == "" || got.Status != StatusPending {
		t.Errorf("Create() = %+v", got)
	}
	if err = dbConn.SQLMock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepositoryWrites(t *testing.T) {
	moved := Appointment{ID: "1", PatientName: "Alice Johnson", Date: "2099-01-20", Time: "10:30", Status: StatusPending, Type: TypeConsultation}
	tests := []struct {
		name    string
		opts    []mock.DBResultOption
		call    func(repository *Repository) error
		wantErr error
	}{
		{
			name: "should update the status",
			opts: []mock.DBResultOption{mock.WithExecResult(updateStatusQuery, sqlmock.NewResult(0, 1), "1", StatusConfirmed)},
			call: func(repository *Repository) error {
				return repository.UpdateStatus(context.Background(), "1", StatusConfirmed)
			},
		},
		{
			name: "should report a missing appointment on status updates",
			opts: []mock.DBResultOption{mock.WithExecResult(updateStatusQuery, sqlmock.NewResult(0, 0))},
			call: func(repository *Repository) error {
				return repository.UpdateStatus(context.Background(), "99", StatusConfirmed)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "should update the whole appointment",
			opts: []mock.DBResultOption{mock.WithExecResult(updateAppointmentQuery, sqlmock.NewResult(0, 1), "1", "Alice Johnson", "", "", "2099-01-20", "10:30", StatusPending, "", TypeConsultation)},
			call: func(repository *Repository) error {
				return repository.Update(context.Background(), moved)
			},
		},
		{
			name: "should delete the appointment",
			opts: []mock.DBResultOption{mock.WithExecResult(deleteAppointmentQuery, sqlmock.NewResult(0, 1), "1")},
			call: func(repository *Repository) error {
				return repository.Delete(context.Background(), "1")
			},
		},
		{
			name: "should return database errors",
			opts: []mock.DBResultOption{mock.WithExecError(deleteAppointmentQuery, sqlmock.ErrCancelled)},
			call: func(repository *Repository) error {
				return repository.Delete(context.Background(), "1")
			},
			wantErr: sqlmock.ErrCancelled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbConn := mock.MustCreateConnectionMock()
			defer dbConn.Close()
			mock.MockDBResults(dbConn, tt.opts...)
			if err := tt.call(NewRepository(dbConn)); !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err := dbConn.SQLMock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}
