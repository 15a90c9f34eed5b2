package dto

import (
	"github.com/LautaroGarc/dardito/internal/models"
)

// UserDTO represents a user in API responses. Token hashes never leave the
// service layer.
type UserDTO struct {
	ID       string      `json:"id"`
	Nickname string      `json:"nickname"`
	Role     models.Role `json:"role"`
	Team     string      `json:"team"`
}

// UserStatsDTO represents a user with their activity counters.
type UserStatsDTO struct {
	UserDTO
	SecondsInCall  int `json:"secondsInCall"`
	TasksAssigned  int `json:"tasksAssigned"`
	TasksCompleted int `json:"tasksCompleted"`
}

// ToUserDTO converts a user model to its API representation.
func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Nickname: u.Nickname,
		Role:     u.Role,
		Team:     u.Team,
	}
}

// ToUserStatsDTO converts a user model including counters.
func ToUserStatsDTO(u models.User) UserStatsDTO {
	return UserStatsDTO{
		UserDTO:        ToUserDTO(u),
		SecondsInCall:  u.Stats.SecondsInCall,
		TasksAssigned:  u.Stats.TasksAssigned,
		TasksCompleted: u.Stats.TasksCompleted,
	}
}

// ToUserDTOs converts a list of users.
func ToUserDTOs(users []*models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(*u))
	}
	return out
}
