package handlers

import (
	"context"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
	"github.com/TAF-Playground/TAF-DataDev/pkg/services"
)

const testConnectionID = "db_550e8400-e29b-41d4-a716-446655440000"

// mockConnectionService stores profiles in a map keyed by id.
type mockConnectionService struct {
	profiles map[string]*models.ConnectionProfile
	created  *models.ConnectionProfile
	patch    *models.ConnectionPatch
	err      error
}

func newMockConnectionService(profiles ...*models.ConnectionProfile) *mockConnectionService {
	m := &mockConnectionService{profiles: make(map[string]*models.ConnectionProfile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockConnectionService) List(ctx context.Context) ([]*models.ConnectionProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*models.ConnectionProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockConnectionService) Get(ctx context.Context, id string) (*models.ConnectionProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (m *mockConnectionService) Create(ctx context.Context, c *models.ConnectionProfile) (*models.ConnectionProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c.Name == "" || c.DBType == "" {
		return nil, apperrors.ErrInvalidInput
	}
	c.ID = testConnectionID
	m.created = c
	return c, nil
}

func (m *mockConnectionService) Update(ctx context.Context, id string, patch models.ConnectionPatch) (*models.ConnectionProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	m.patch = &patch
	patch.Apply(p)
	return p, nil
}

func (m *mockConnectionService) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.profiles[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.profiles, id)
	return nil
}

// mockTester records the params it was called with.
type mockTester struct {
	ok     bool
	msg    string
	params *datasource.ConnectionParams
}

func (m *mockTester) Test(ctx context.Context, params datasource.ConnectionParams) (bool, string) {
	m.params = &params
	return m.ok, m.msg
}

type mockQueryService struct {
	result *services.QueryResult
	sql    string
}

func (m *mockQueryService) Execute(ctx context.Context, profile *models.ConnectionProfile, sqlText string) *services.QueryResult {
	m.sql = sqlText
	return m.result
}

type mockSchemaService struct {
	databases []string
	tables    []string
	structure *services.TableStructure
	err       error

	gotDatabase string
	gotSchema   string
	gotTable    string
}

func (m *mockSchemaService) ListDatabases(ctx context.Context, profile *models.ConnectionProfile) ([]string, error) {
	return m.databases, m.err
}

func (m *mockSchemaService) ListTables(ctx context.Context, profile *models.ConnectionProfile, database, schema string) ([]string, error) {
	m.gotDatabase, m.gotSchema = database, schema
	return m.tables, m.err
}

func (m *mockSchemaService) DescribeTable(ctx context.Context, profile *models.ConnectionProfile, database, schema, table string) (*services.TableStructure, error) {
	m.gotDatabase, m.gotSchema, m.gotTable = database, schema, table
	return m.structure, m.err
}

type mockEditorService struct {
	tree       []*models.TreeNode
	dir        *models.Directory
	project    *models.Project
	err        error
	dirReq     *services.CreateDirectoryRequest
	projectReq *services.CreateProjectRequest
}

func (m *mockEditorService) Tree(ctx context.Context) ([]*models.TreeNode, error) {
	return m.tree, m.err
}

func (m *mockEditorService) CreateDirectory(ctx context.Context, req services.CreateDirectoryRequest) (*models.Directory, error) {
	m.dirReq = &req
	return m.dir, m.err
}

func (m *mockEditorService) CreateProject(ctx context.Context, req services.CreateProjectRequest) (*models.Project, error) {
	m.projectReq = &req
	return m.project, m.err
}
