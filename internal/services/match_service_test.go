package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/services"
)

func candidateWith(id string, skills, roles []string, resumeURL string) *models.User {
	return &models.User{
		ID:       id,
		FullName: "Candidate " + id,
		Role:     models.RoleCandidate,
		CandidateProfile: &models.CandidateProfile{
			Skills:         skills,
			PreferredRoles: roles,
			ResumeURL:      resumeURL,
		},
	}
}

func TestMatchesForJob_RankingAndFiltering(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewMatchService(jobRepo, userRepo)

	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:             "job-1",
		PostedBy:       "int-1",
		RequiredSkills: []string{"Go", "Python"},
		PreferredRole:  "Backend Developer",
	}, nil)
	userRepo.On("SearchCandidates", mock.Anything, mock.AnythingOfType("models.CandidateSearchFilter")).Return([]*models.User{
		// Full skill overlap, role match, resume: 60 + 30 + 10
		candidateWith("cand-full", []string{"Go", "Python"}, []string{"Backend Developer"}, "https://cdn/resume.pdf"),
		// Half skill overlap only: 30
		candidateWith("cand-half", []string{"Go"}, []string{"Frontend Developer"}, ""),
		// No overlap, no role match: filtered out
		candidateWith("cand-none", []string{"Ruby"}, []string{"Data Scientist"}, "https://cdn/other.pdf"),
		// No profile yet: skipped
		{ID: "cand-bare", Role: models.RoleCandidate},
	}, nil)

	results, err := svc.MatchesForJob(context.Background(), "int-1", "job-1", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "cand-full", results[0].CandidateID)
	assert.InDelta(t, 100.0, results[0].Score, 0.01)
	assert.True(t, results[0].RoleMatch)
	assert.ElementsMatch(t, []string{"Go", "Python"}, results[0].MatchedSkills)

	assert.Equal(t, "cand-half", results[1].CandidateID)
	assert.InDelta(t, 30.0, results[1].Score, 0.01)
	assert.False(t, results[1].RoleMatch)
}

func TestMatchesForJob_CaseInsensitiveSkills(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewMatchService(jobRepo, userRepo)

	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:             "job-1",
		PostedBy:       "int-1",
		RequiredSkills: []string{"go"},
	}, nil)
	userRepo.On("SearchCandidates", mock.Anything, mock.AnythingOfType("models.CandidateSearchFilter")).Return([]*models.User{
		candidateWith("cand-1", []string{"Go"}, nil, ""),
	}, nil)

	results, err := svc.MatchesForJob(context.Background(), "int-1", "job-1", 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 60.0, results[0].Score, 0.01)
}

func TestMatchesForJob_LimitApplied(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewMatchService(jobRepo, userRepo)

	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:             "job-1",
		PostedBy:       "int-1",
		RequiredSkills: []string{"Go"},
	}, nil)

	pool := make([]*models.User, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		pool = append(pool, candidateWith("cand-"+id, []string{"Go"}, nil, ""))
	}
	userRepo.On("SearchCandidates", mock.Anything, mock.AnythingOfType("models.CandidateSearchFilter")).Return(pool, nil)

	results, err := svc.MatchesForJob(context.Background(), "int-1", "job-1", 2)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestMatchesForJob_NotOwner(t *testing.T) {
	jobRepo := new(MockJobRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewMatchService(jobRepo, userRepo)

	jobRepo.On("GetJobByID", mock.Anything, "job-1").Return(&models.Job{
		ID:       "job-1",
		PostedBy: "int-1",
	}, nil)

	_, err := svc.MatchesForJob(context.Background(), "int-2", "job-1", 10)

	assert.ErrorIs(t, err, services.ErrNotJobOwner)
	userRepo.AssertNotCalled(t, "SearchCandidates", mock.Anything, mock.Anything)
}
