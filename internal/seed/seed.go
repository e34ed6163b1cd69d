package seed

import (
	"fmt"
	"log"

	"agora/internal/models"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with a realistic community: users, posts,
// comments and likes with consistent denormalized counters.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// NewSeederWithSeed creates a Seeder whose random source is fixed, for
// reproducible demo datasets.
func NewSeederWithSeed(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{db: db, factory: NewFactoryWithSeed(db, seed)}
}

// ClearAll removes all seeded data. Children go first so foreign keys never
// dangle mid-run.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds the requested number of users and posts, then scatters comments
// and likes across them.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[s.factory.rnd.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("seeded %d posts", len(posts))

	comments := 0
	likes := 0
	for _, post := range posts {
		for i := s.factory.rnd.Intn(5); i > 0; i-- {
			commenter := users[s.factory.rnd.Intn(len(users))]
			if _, err := s.factory.CreateComment(post, commenter); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
			comments++
		}

		// Pick a distinct subset of users so the post/user like pair
		// stays unique.
		perm := s.factory.rnd.Perm(len(users))
		for _, idx := range perm[:s.factory.rnd.Intn(len(users)+1)] {
			if _, err := s.factory.CreateLike(post, users[idx]); err != nil {
				return fmt.Errorf("seed like: %w", err)
			}
			likes++
		}
	}
	log.Printf("seeded %d comments, %d likes", comments, likes)

	return nil
}
