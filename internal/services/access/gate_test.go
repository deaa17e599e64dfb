package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tahminci/tahminci-api/internal/models"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		role          string
		itemIsPremium bool
		view          View
		want          Decision
	}{
		{
			name: "бесплатный контент открыт анониму в списке",
			role: "", itemIsPremium: false, view: ViewList,
			want: Allow,
		},
		{
			name: "бесплатный контент открыт анониму в детальном просмотре",
			role: "", itemIsPremium: false, view: ViewDetail,
			want: Allow,
		},
		{
			name: "premium-контент в списке урезается для NORMAL",
			role: models.RoleNormal, itemIsPremium: true, view: ViewList,
			want: AllowRedacted,
		},
		{
			name: "premium-контент в списке урезается для анонима",
			role: "", itemIsPremium: true, view: ViewList,
			want: AllowRedacted,
		},
		{
			name: "premium-контент в детальном просмотре закрыт для NORMAL",
			role: models.RoleNormal, itemIsPremium: true, view: ViewDetail,
			want: Deny,
		},
		{
			name: "premium-контент в детальном просмотре закрыт для анонима",
			role: "", itemIsPremium: true, view: ViewDetail,
			want: Deny,
		},
		{
			name: "PREMIUM видит premium-контент целиком в списке",
			role: models.RolePremium, itemIsPremium: true, view: ViewList,
			want: Allow,
		},
		{
			name: "PREMIUM видит premium-контент целиком в детальном просмотре",
			role: models.RolePremium, itemIsPremium: true, view: ViewDetail,
			want: Allow,
		},
		{
			name: "ADMIN видит premium-контент целиком",
			role: models.RoleAdmin, itemIsPremium: true, view: ViewDetail,
			want: Allow,
		},
		{
			name: "бесплатный контент открыт PREMIUM",
			role: models.RolePremium, itemIsPremium: false, view: ViewDetail,
			want: Allow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.role, tt.itemIsPremium, tt.view)
			assert.Equal(t, tt.want, got)
		})
	}
}
