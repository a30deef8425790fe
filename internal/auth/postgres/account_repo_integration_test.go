// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

//go:build integration

package postgres_test

import (
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/auth/postgres"
)

var _ = Describe("AccountRepository", func() {
	var repo *postgres.AccountRepository

	newAccount := func(email string) *auth.Account {
		a, err := auth.NewAccount("Katherine Johnson", email, "5550199", auth.RoleSeeker, "$argon2id$stub")
		Expect(err).NotTo(HaveOccurred())
		a.CreatedAt = a.CreatedAt.Truncate(time.Microsecond)
		a.UpdatedAt = a.CreatedAt
		return a
	}

	BeforeEach(func(ctx SpecContext) {
		repo = postgres.NewAccountRepository(testPool)
		_, err := testPool.Exec(ctx, `DELETE FROM accounts`)
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips an account", func(ctx SpecContext) {
		a := newAccount("kj@example.com")
		Expect(repo.Create(ctx, a)).To(Succeed())

		byID, err := repo.GetByID(ctx, a.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Email).To(Equal("kj@example.com"))
		Expect(byID.Role).To(Equal(auth.RoleSeeker))
		Expect(byID.Profile.Bio).To(BeNil())
		Expect(byID.Profile.Skills).To(BeEmpty())
		Expect(byID.CreatedAt.Equal(a.CreatedAt)).To(BeTrue())

		byEmail, err := repo.GetByEmail(ctx, "kj@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(byEmail.ID).To(Equal(a.ID))
	})

	It("rejects a second account with the same email", func(ctx SpecContext) {
		Expect(repo.Create(ctx, newAccount("dup@example.com"))).To(Succeed())

		err := repo.Create(ctx, newAccount("dup@example.com"))
		Expect(err).To(MatchError(auth.ErrDuplicateEmail))
	})

	It("reports unknown accounts as not found", func(ctx SpecContext) {
		_, err := repo.GetByID(ctx, ulid.Make())
		Expect(err).To(MatchError(auth.ErrNotFound))

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		Expect(err).To(MatchError(auth.ErrNotFound))

		err = repo.Update(ctx, newAccount("ghost@example.com"))
		Expect(err).To(MatchError(auth.ErrNotFound))
	})

	It("updates profile fields", func(ctx SpecContext) {
		a := newAccount("kj@example.com")
		Expect(repo.Create(ctx, a)).To(Succeed())

		bio := "orbital mechanics"
		a.Profile.Bio = &bio
		a.Profile.Skills = auth.ParseSkills("fortran, trajectories")
		a.PhoneNumber = "5550000"
		Expect(repo.Update(ctx, a)).To(Succeed())

		got, err := repo.GetByID(ctx, a.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Profile.Bio).To(HaveValue(Equal("orbital mechanics")))
		Expect(got.Profile.Skills).To(Equal([]string{"fortran", "trajectories"}))
		Expect(got.PhoneNumber).To(Equal("5550000"))
	})

	It("rejects an update to another account's email", func(ctx SpecContext) {
		first := newAccount("first@example.com")
		second := newAccount("second@example.com")
		Expect(repo.Create(ctx, first)).To(Succeed())
		Expect(repo.Create(ctx, second)).To(Succeed())

		second.Email = "first@example.com"
		Expect(repo.Update(ctx, second)).To(MatchError(auth.ErrDuplicateEmail))
	})
})
