package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/repo"
)

type fakeRelationRepo struct {
	recipe    *domain.Recipe
	recipeErr error

	addFavErr    error
	removeFavErr error
	addCartErr   error
	removeErr    error

	addedFav  [2]int64
	addedCart [2]int64
}

func (f *fakeRelationRepo) GetRecipe(_ context.Context, _ *gorm.DB, _ int64) (*domain.Recipe, error) {
	if f.recipeErr != nil {
		return nil, f.recipeErr
	}
	return f.recipe, nil
}

func (f *fakeRelationRepo) AddFavorite(_ context.Context, _ *gorm.DB, userID, recipeID int64) error {
	f.addedFav = [2]int64{userID, recipeID}
	return f.addFavErr
}

func (f *fakeRelationRepo) RemoveFavorite(_ context.Context, _ *gorm.DB, _, _ int64) error {
	return f.removeFavErr
}

func (f *fakeRelationRepo) AddCartItem(_ context.Context, _ *gorm.DB, userID, recipeID int64) error {
	f.addedCart = [2]int64{userID, recipeID}
	return f.addCartErr
}

func (f *fakeRelationRepo) RemoveCartItem(_ context.Context, _ *gorm.DB, _, _ int64) error {
	return f.removeErr
}

func sampleRecipe() *domain.Recipe {
	return &domain.Recipe{ID: 17, Name: "Cake", Image: "recipes/cake.png", CookingTime: 40}
}

func TestFavoriteService_Add(t *testing.T) {
	fake := &fakeRelationRepo{recipe: sampleRecipe()}
	svc := &FavoriteService{Repo: fake}

	short, err := svc.Add(context.Background(), 3, 17)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if short.ID != 17 || short.Name != "Cake" || short.Image != "recipes/cake.png" || short.CookingTime != 40 {
		t.Fatalf("unexpected short form: %+v", short)
	}
	if fake.addedFav != [2]int64{3, 17} {
		t.Fatalf("repo called with %v", fake.addedFav)
	}
}

func TestFavoriteService_Add_Errors(t *testing.T) {
	t.Run("recipe missing", func(t *testing.T) {
		svc := &FavoriteService{Repo: &fakeRelationRepo{recipeErr: gorm.ErrRecordNotFound}}
		if _, err := svc.Add(context.Background(), 3, 404); !errors.Is(err, ErrRecipeNotFound) {
			t.Fatalf("got %v, want ErrRecipeNotFound", err)
		}
	})
	t.Run("duplicate", func(t *testing.T) {
		svc := &FavoriteService{Repo: &fakeRelationRepo{recipe: sampleRecipe(), addFavErr: repo.ErrDuplicate}}
		if _, err := svc.Add(context.Background(), 3, 17); !errors.Is(err, ErrAlreadyFavorited) {
			t.Fatalf("got %v, want ErrAlreadyFavorited", err)
		}
	})
}

func TestFavoriteService_Remove(t *testing.T) {
	svc := &FavoriteService{Repo: &fakeRelationRepo{}}
	if err := svc.Remove(context.Background(), 3, 17); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	svc = &FavoriteService{Repo: &fakeRelationRepo{removeFavErr: gorm.ErrRecordNotFound}}
	if err := svc.Remove(context.Background(), 3, 17); !errors.Is(err, ErrNotFavorited) {
		t.Fatalf("got %v, want ErrNotFavorited", err)
	}
}

func TestCartService_Add(t *testing.T) {
	fake := &fakeRelationRepo{recipe: sampleRecipe()}
	svc := &CartService{Repo: fake}

	short, err := svc.Add(context.Background(), 3, 17)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if short.ID != 17 {
		t.Fatalf("unexpected short form: %+v", short)
	}
	if fake.addedCart != [2]int64{3, 17} {
		t.Fatalf("repo called with %v", fake.addedCart)
	}
}

func TestCartService_Add_Errors(t *testing.T) {
	t.Run("recipe missing", func(t *testing.T) {
		svc := &CartService{Repo: &fakeRelationRepo{recipeErr: gorm.ErrRecordNotFound}}
		if _, err := svc.Add(context.Background(), 3, 404); !errors.Is(err, ErrRecipeNotFound) {
			t.Fatalf("got %v, want ErrRecipeNotFound", err)
		}
	})
	t.Run("duplicate", func(t *testing.T) {
		svc := &CartService{Repo: &fakeRelationRepo{recipe: sampleRecipe(), addCartErr: repo.ErrDuplicate}}
		if _, err := svc.Add(context.Background(), 3, 17); !errors.Is(err, ErrAlreadyInCart) {
			t.Fatalf("got %v, want ErrAlreadyInCart", err)
		}
	})
}

func TestCartService_Remove(t *testing.T) {
	svc := &CartService{Repo: &fakeRelationRepo{}}
	if err := svc.Remove(context.Background(), 3, 17); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	svc = &CartService{Repo: &fakeRelationRepo{removeErr: gorm.ErrRecordNotFound}}
	if err := svc.Remove(context.Background(), 3, 17); !errors.Is(err, ErrNotInCart) {
		t.Fatalf("got %v, want ErrNotInCart", err)
	}
}
