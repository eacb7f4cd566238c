package memory

import (
	"context"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

func (q *queries) CreateRole(_ context.Context, role *model.Role) error {
	d, unlock := q.acquire()
	defer unlock()

	for _, r := range d.roles {
		if r.Name == role.Name {
			return conflict("role %q already exists", role.Name)
		}
	}
	role.ID = d.next("roles")
	d.roles[role.ID] = *role
	return nil
}

func (q *queries) GetRole(_ context.Context, id int64) (*model.Role, error) {
	d, unlock := q.acquire()
	defer unlock()

	r, ok := d.roles[id]
	if !ok {
		return nil, notFound("role")
	}
	return &r, nil
}

func (q *queries) GetRoleByName(_ context.Context, name string) (*model.Role, error) {
	d, unlock := q.acquire()
	defer unlock()

	for _, r := range d.roles {
		if r.Name == name {
			return &r, nil
		}
	}
	return nil, notFound("role")
}

func (q *queries) ListRoles(_ context.Context) ([]model.Role, error) {
	d, unlock := q.acquire()
	defer unlock()
	return all(d.roles, nil), nil
}

func (q *queries) UpdateRole(_ context.Context, role *model.Role) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.roles[role.ID]; !ok {
		return notFound("role")
	}
	for id, r := range d.roles {
		if id != role.ID && r.Name == role.Name {
			return conflict("role %q already exists", role.Name)
		}
	}
	d.roles[role.ID] = *role
	return nil
}

func (q *queries) DeleteRole(_ context.Context, id int64) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.roles[id]; !ok {
		return notFound("role")
	}
	for _, u := range d.users {
		if u.RoleID == id {
			return conflict("role %d is still referenced by users", id)
		}
	}
	delete(d.roles, id)
	return nil
}

func (d *dataset) joinRole(u model.User) *model.User {
	if r, ok := d.roles[u.RoleID]; ok {
		u.Role = &r
	} else {
		u.Role = nil
	}
	return &u
}

func (d *dataset) checkUser(user *model.User) error {
	if _, ok := d.roles[user.RoleID]; !ok {
		return conflict("role %d does not exist", user.RoleID)
	}
	for id, u := range d.users {
		if id == user.ID {
			continue
		}
		if sameFold(u.Username, user.Username) || sameFold(u.Email, user.Email) {
			return conflict("user already exists")
		}
	}
	return nil
}

func (q *queries) CreateUser(_ context.Context, user *model.User) error {
	d, unlock := q.acquire()
	defer unlock()

	user.ID = 0
	if err := d.checkUser(user); err != nil {
		return err
	}
	user.ID = d.next("users")
	user.CreatedAt = q.s.now()
	stored := *user
	stored.Role = nil
	d.users[user.ID] = stored
	return nil
}

func (q *queries) GetUser(_ context.Context, id int64) (*model.User, error) {
	d, unlock := q.acquire()
	defer unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return d.joinRole(u), nil
}

func (q *queries) GetUserByLogin(_ context.Context, identifier string) (*model.User, error) {
	d, unlock := q.acquire()
	defer unlock()

	matches := all(d.users, func(u model.User) bool {
		return sameFold(u.Username, identifier) || sameFold(u.Email, identifier)
	})
	if len(matches) == 0 {
		return nil, notFound("user")
	}
	return d.joinRole(matches[0]), nil
}

func (q *queries) FindUserConflict(_ context.Context, username, email string, excludeID int64) (*model.User, error) {
	d, unlock := q.acquire()
	defer unlock()

	matches := all(d.users, func(u model.User) bool {
		return u.ID != excludeID && (sameFold(u.Username, username) || sameFold(u.Email, email))
	})
	if len(matches) == 0 {
		return nil, notFound("user")
	}
	return d.joinRole(matches[0]), nil
}

func (q *queries) ListUsers(_ context.Context, p store.Page) ([]model.User, error) {
	d, unlock := q.acquire()
	defer unlock()

	users := page(d.users, p, nil)
	for i := range users {
		users[i] = *d.joinRole(users[i])
	}
	return users, nil
}

func (q *queries) UpdateUser(_ context.Context, user *model.User) error {
	d, unlock := q.acquire()
	defer unlock()

	existing, ok := d.users[user.ID]
	if !ok {
		return notFound("user")
	}
	if err := d.checkUser(user); err != nil {
		return err
	}
	stored := *user
	stored.CreatedAt = existing.CreatedAt
	stored.Role = nil
	d.users[user.ID] = stored
	return nil
}

func (q *queries) DeleteUser(_ context.Context, id int64) error {
	d, unlock := q.acquire()
	defer unlock()

	if _, ok := d.users[id]; !ok {
		return notFound("user")
	}
	for _, a := range d.apartments {
		if a.LandlordID == id {
			return conflict("user %d still owns apartments", id)
		}
	}
	for _, t := range d.tenants {
		if t.UserID == id {
			return conflict("user %d still has a tenant profile", id)
		}
	}
	delete(d.users, id)
	return nil
}

func (q *queries) CountUsersByRole(_ context.Context, roleID int64) (int, error) {
	d, unlock := q.acquire()
	defer unlock()
	return len(all(d.users, func(u model.User) bool { return u.RoleID == roleID })), nil
}
