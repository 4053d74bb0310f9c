package mock

import (
	context "context"
	reflect "reflect"
	time "time"

	models "github.com/apptracker/settler/settler/database/models"
	gomock "go.uber.org/mock/gomock"
)

// MockUserRepository is a mock of UserRepository interface.
type MockUserRepository struct {
	ctrl     *gomock.Controller
	recorder *MockUserRepositoryMockRecorder
	isgomock struct{}
}

// MockUserRepositoryMockRecorder is the mock recorder for MockUserRepository.
type MockUserRepositoryMockRecorder struct {
	mock *MockUserRepository
}

// NewMockUserRepository creates a new mock instance.
func NewMockUserRepository(ctrl *gomock.Controller) *MockUserRepository {
	mock := &MockUserRepository{ctrl: ctrl}
	mock.recorder = &MockUserRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockUserRepository) EXPECT() *MockUserRepositoryMockRecorder {
	return m.recorder
}

// GetByID mocks base method.
func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, userID)
	ret0, _ := ret[0].(*models.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockUserRepositoryMockRecorder) GetByID(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockUserRepository)(nil).GetByID), ctx, userID)
}

// GetAll mocks base method.
func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetAll", ctx)
	ret0, _ := ret[0].([]*models.User)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetAll indicates an expected call of GetAll.
func (mr *MockUserRepositoryMockRecorder) GetAll(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetAll", reflect.TypeOf((*MockUserRepository)(nil).GetAll), ctx)
}

// GetPoints mocks base method.
func (m *MockUserRepository) GetPoints(ctx context.Context, userID string) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetPoints", ctx, userID)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetPoints indicates an expected call of GetPoints.
func (mr *MockUserRepositoryMockRecorder) GetPoints(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetPoints", reflect.TypeOf((*MockUserRepository)(nil).GetPoints), ctx, userID)
}

// SetPoints mocks base method.
func (m *MockUserRepository) SetPoints(ctx context.Context, userID string, points int64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetPoints", ctx, userID, points)
	ret0, _ := ret[0].(error)
	return ret0
}

// SetPoints indicates an expected call of SetPoints.
func (mr *MockUserRepositoryMockRecorder) SetPoints(ctx, userID, points any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetPoints", reflect.TypeOf((*MockUserRepository)(nil).SetPoints), ctx, userID, points)
}

// Upsert mocks base method.
func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Upsert", ctx, user)
	ret0, _ := ret[0].(error)
	return ret0
}

// Upsert indicates an expected call of Upsert.
func (mr *MockUserRepositoryMockRecorder) Upsert(ctx, user any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upsert", reflect.TypeOf((*MockUserRepository)(nil).Upsert), ctx, user)
}

// MockUsageRepository is a mock of UsageRepository interface.
type MockUsageRepository struct {
	ctrl     *gomock.Controller
	recorder *MockUsageRepositoryMockRecorder
	isgomock struct{}
}

// MockUsageRepositoryMockRecorder is the mock recorder for MockUsageRepository.
type MockUsageRepositoryMockRecorder struct {
	mock *MockUsageRepository
}

// NewMockUsageRepository creates a new mock instance.
func NewMockUsageRepository(ctrl *gomock.Controller) *MockUsageRepository {
	mock := &MockUsageRepository{ctrl: ctrl}
	mock.recorder = &MockUsageRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockUsageRepository) EXPECT() *MockUsageRepositoryMockRecorder {
	return m.recorder
}

// GetByUserAndDate mocks base method.
func (m *MockUsageRepository) GetByUserAndDate(ctx context.Context, userID, date string) ([]*models.UsageRecord, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByUserAndDate", ctx, userID, date)
	ret0, _ := ret[0].([]*models.UsageRecord)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByUserAndDate indicates an expected call of GetByUserAndDate.
func (mr *MockUsageRepositoryMockRecorder) GetByUserAndDate(ctx, userID, date any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByUserAndDate", reflect.TypeOf((*MockUsageRepository)(nil).GetByUserAndDate), ctx, userID, date)
}

// GetUserIDs mocks base method.
func (m *MockUsageRepository) GetUserIDs(ctx context.Context, date string) ([]string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetUserIDs", ctx, date)
	ret0, _ := ret[0].([]string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetUserIDs indicates an expected call of GetUserIDs.
func (mr *MockUsageRepositoryMockRecorder) GetUserIDs(ctx, date any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetUserIDs", reflect.TypeOf((*MockUsageRepository)(nil).GetUserIDs), ctx, date)
}

// BulkUpsert mocks base method.
func (m *MockUsageRepository) BulkUpsert(ctx context.Context, records []*models.UsageRecord) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BulkUpsert", ctx, records)
	ret0, _ := ret[0].(error)
	return ret0
}

// BulkUpsert indicates an expected call of BulkUpsert.
func (mr *MockUsageRepositoryMockRecorder) BulkUpsert(ctx, records any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BulkUpsert", reflect.TypeOf((*MockUsageRepository)(nil).BulkUpsert), ctx, records)
}

// MockQuestRepository is a mock of QuestRepository interface.
type MockQuestRepository struct {
	ctrl     *gomock.Controller
	recorder *MockQuestRepositoryMockRecorder
	isgomock struct{}
}

// MockQuestRepositoryMockRecorder is the mock recorder for MockQuestRepository.
type MockQuestRepositoryMockRecorder struct {
	mock *MockQuestRepository
}

// NewMockQuestRepository creates a new mock instance.
func NewMockQuestRepository(ctrl *gomock.Controller) *MockQuestRepository {
	mock := &MockQuestRepository{ctrl: ctrl}
	mock.recorder = &MockQuestRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockQuestRepository) EXPECT() *MockQuestRepositoryMockRecorder {
	return m.recorder
}

// GetOpenByUser mocks base method.
func (m *MockQuestRepository) GetOpenByUser(ctx context.Context, userID string) ([]*models.Quest, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetOpenByUser", ctx, userID)
	ret0, _ := ret[0].([]*models.Quest)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetOpenByUser indicates an expected call of GetOpenByUser.
func (mr *MockQuestRepositoryMockRecorder) GetOpenByUser(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetOpenByUser", reflect.TypeOf((*MockQuestRepository)(nil).GetOpenByUser), ctx, userID)
}

// MarkCompleted mocks base method.
func (m *MockQuestRepository) MarkCompleted(ctx context.Context, questID string, reward int64, completedAt time.Time) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkCompleted", ctx, questID, reward, completedAt)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// MarkCompleted indicates an expected call of MarkCompleted.
func (mr *MockQuestRepositoryMockRecorder) MarkCompleted(ctx, questID, reward, completedAt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkCompleted", reflect.TypeOf((*MockQuestRepository)(nil).MarkCompleted), ctx, questID, reward, completedAt)
}

// Create mocks base method.
func (m *MockQuestRepository) Create(ctx context.Context, quest *models.Quest) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, quest)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockQuestRepositoryMockRecorder) Create(ctx, quest any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockQuestRepository)(nil).Create), ctx, quest)
}

// MockTransactionRepository is a mock of TransactionRepository interface.
type MockTransactionRepository struct {
	ctrl     *gomock.Controller
	recorder *MockTransactionRepositoryMockRecorder
	isgomock struct{}
}

// MockTransactionRepositoryMockRecorder is the mock recorder for MockTransactionRepository.
type MockTransactionRepositoryMockRecorder struct {
	mock *MockTransactionRepository
}

// NewMockTransactionRepository creates a new mock instance.
func NewMockTransactionRepository(ctrl *gomock.Controller) *MockTransactionRepository {
	mock := &MockTransactionRepository{ctrl: ctrl}
	mock.recorder = &MockTransactionRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTransactionRepository) EXPECT() *MockTransactionRepositoryMockRecorder {
	return m.recorder
}

// Append mocks base method.
func (m *MockTransactionRepository) Append(ctx context.Context, tx *models.PointTransaction) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Append", ctx, tx)
	ret0, _ := ret[0].(error)
	return ret0
}

// Append indicates an expected call of Append.
func (mr *MockTransactionRepositoryMockRecorder) Append(ctx, tx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Append", reflect.TypeOf((*MockTransactionRepository)(nil).Append), ctx, tx)
}

// GetByUser mocks base method.
func (m *MockTransactionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.PointTransaction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByUser", ctx, userID, limit)
	ret0, _ := ret[0].([]*models.PointTransaction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByUser indicates an expected call of GetByUser.
func (mr *MockTransactionRepositoryMockRecorder) GetByUser(ctx, userID, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByUser", reflect.TypeOf((*MockTransactionRepository)(nil).GetByUser), ctx, userID, limit)
}

// MockDashboardRepository is a mock of DashboardRepository interface.
type MockDashboardRepository struct {
	ctrl     *gomock.Controller
	recorder *MockDashboardRepositoryMockRecorder
	isgomock struct{}
}

// MockDashboardRepositoryMockRecorder is the mock recorder for MockDashboardRepository.
type MockDashboardRepositoryMockRecorder struct {
	mock *MockDashboardRepository
}

// NewMockDashboardRepository creates a new mock instance.
func NewMockDashboardRepository(ctrl *gomock.Controller) *MockDashboardRepository {
	mock := &MockDashboardRepository{ctrl: ctrl}
	mock.recorder = &MockDashboardRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDashboardRepository) EXPECT() *MockDashboardRepositoryMockRecorder {
	return m.recorder
}

// Upsert mocks base method.
func (m *MockDashboardRepository) Upsert(ctx context.Context, snapshot *models.DashboardSnapshot) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Upsert", ctx, snapshot)
	ret0, _ := ret[0].(error)
	return ret0
}

// Upsert indicates an expected call of Upsert.
func (mr *MockDashboardRepositoryMockRecorder) Upsert(ctx, snapshot any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upsert", reflect.TypeOf((*MockDashboardRepository)(nil).Upsert), ctx, snapshot)
}

// Get mocks base method.
func (m *MockDashboardRepository) Get(ctx context.Context, userID, date string) (*models.DashboardSnapshot, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx, userID, date)
	ret0, _ := ret[0].(*models.DashboardSnapshot)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockDashboardRepositoryMockRecorder) Get(ctx, userID, date any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockDashboardRepository)(nil).Get), ctx, userID, date)
}

// MockRankingRepository is a mock of RankingRepository interface.
type MockRankingRepository struct {
	ctrl     *gomock.Controller
	recorder *MockRankingRepositoryMockRecorder
	isgomock struct{}
}

// MockRankingRepositoryMockRecorder is the mock recorder for MockRankingRepository.
type MockRankingRepositoryMockRecorder struct {
	mock *MockRankingRepository
}

// NewMockRankingRepository creates a new mock instance.
func NewMockRankingRepository(ctrl *gomock.Controller) *MockRankingRepository {
	mock := &MockRankingRepository{ctrl: ctrl}
	mock.recorder = &MockRankingRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRankingRepository) EXPECT() *MockRankingRepositoryMockRecorder {
	return m.recorder
}

// ReplaceAll mocks base method.
func (m *MockRankingRepository) ReplaceAll(ctx context.Context, entries []*models.RankingEntry) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReplaceAll", ctx, entries)
	ret0, _ := ret[0].(error)
	return ret0
}

// ReplaceAll indicates an expected call of ReplaceAll.
func (mr *MockRankingRepositoryMockRecorder) ReplaceAll(ctx, entries any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReplaceAll", reflect.TypeOf((*MockRankingRepository)(nil).ReplaceAll), ctx, entries)
}
