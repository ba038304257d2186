package services

import (
	"context"
	"sort"
	"strings"

	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/internal/repository"
)

const (
	matchSkillWeight = 60.0
	matchRoleWeight  = 30.0
	matchBonusWeight = 10.0

	defaultMatchLimit = 20
	matchPoolSize     = 100
)

// MatchService ranks candidates against a posting's requirements. Scoring is
// a weighted sum: skill overlap dominates, preferred role alignment counts
// for less, and a small bonus rewards a complete profile with a resume.
type MatchService struct {
	jobRepo  repository.JobRepository
	userRepo repository.UserRepository
}

func NewMatchService(jobRepo repository.JobRepository, userRepo repository.UserRepository) *MatchService {
	return &MatchService{
		jobRepo:  jobRepo,
		userRepo: userRepo,
	}
}

// MatchesForJob returns candidates ranked by fit for a posting owned by the
// caller. Candidates with no skill overlap and no role match are omitted.
func (s *MatchService) MatchesForJob(ctx context.Context, posterID, jobID string, limit int) ([]models.MatchResult, error) {
	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.PostedBy != posterID {
		return nil, ErrNotJobOwner
	}
	if limit <= 0 || limit > matchPoolSize {
		limit = defaultMatchLimit
	}

	candidates, err := s.userRepo.SearchCandidates(ctx, models.CandidateSearchFilter{Limit: matchPoolSize})
	if err != nil {
		return nil, err
	}

	results := make([]models.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.CandidateProfile == nil {
			continue
		}
		result := scoreCandidate(job, candidate)
		if result.Score > 0 {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func scoreCandidate(job *models.Job, candidate *models.User) models.MatchResult {
	profile := candidate.CandidateProfile

	matched := skillOverlap(job.RequiredSkills, profile.Skills)
	score := 0.0
	if len(job.RequiredSkills) > 0 {
		score += matchSkillWeight * float64(len(matched)) / float64(len(job.RequiredSkills))
	}

	roleMatch := false
	if job.PreferredRole != "" {
		for _, role := range profile.PreferredRoles {
			if strings.EqualFold(role, job.PreferredRole) {
				roleMatch = true
				break
			}
		}
		if roleMatch {
			score += matchRoleWeight
		}
	}

	// Only candidates with some fit get the completeness bonus, so a bare
	// profile with a resume never outranks a skill match.
	if score > 0 && profile.ResumeURL != "" {
		score += matchBonusWeight
	}

	return models.MatchResult{
		CandidateID:    candidate.ID,
		FullName:       candidate.FullName,
		Score:          score,
		MatchedSkills:  matched,
		RoleMatch:      roleMatch,
		ResumeURL:      profile.ResumeURL,
		College:        profile.College,
		GraduationYear: profile.GraduationYear,
	}
}

func skillOverlap(required, offered []string) []string {
	have := make(map[string]bool, len(offered))
	for _, skill := range offered {
		have[strings.ToLower(skill)] = true
	}

	matched := []string{}
	for _, skill := range required {
		if have[strings.ToLower(skill)] {
			matched = append(matched, skill)
		}
	}
	return matched
}
