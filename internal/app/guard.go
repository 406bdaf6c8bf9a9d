package app

import "qquiz-service/internal/domain"

// AssertOwner allows quiz mutation only to the quiz creator or an admin.
func AssertOwner(quiz domain.Quiz, actor domain.User) error {
	if actor.Admin {
		return nil
	}
	if actor.ID == "" || actor.ID != quiz.OwnerID {
		return domain.ErrForbidden
	}
	return nil
}
