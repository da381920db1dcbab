package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/todoui/pkg/dom"
	"golang.org/x/net/html"
)

const signup = `<html><body>
<form action="/register" method="post">
  <input type="hidden" name="_csrf" value="token">
  <div class="mb-3"><input name="username" required value=""></div>
  <div class="mb-3"><input name="password" type="password" value=""></div>
  <div class="mb-3"><input name="title" required value="   "></div>
  <div class="mb-3"><textarea name="description"></textarea></div>
  <button type="submit">Go</button>
</form>
</body></html>`

func load(t *testing.T) (*dom.Document, *html.Node) {
	t.Helper()
	doc, err := dom.ParseString(signup, "http://localhost/register")
	require.NoError(t, err)
	return doc, dom.FindOne(doc.Root(), "//form")
}

func field(form *html.Node, name string) *html.Node {
	return dom.FindOne(form, ".//*[@name='"+name+"']")
}

func errorsByName(res Result) map[string]string {
	out := make(map[string]string)
	for _, fe := range res.Errors {
		out[fe.Name] = fe.Message
	}
	return out
}

func TestRequiredAndLengthRules(t *testing.T) {
	_, f := load(t)
	v := NewFieldValidator(DefaultMessages())

	res := v.Validate(f)
	assert.False(t, res.Valid)

	msgs := DefaultMessages()
	assert.Equal(t, map[string]string{
		"username": msgs.Required,
		"password": msgs.PasswordLength,
		"title":    msgs.Required,
	}, errorsByName(res))

	for _, name := range []string{"username", "password", "title"} {
		assert.Equal(t, 1, AnnotationCount(field(f, name)), name)
		assert.True(t, dom.ContainsClass(field(f, name), InvalidClass), name)
	}
	assert.Equal(t, 0, AnnotationCount(field(f, "description")))
}

func TestShortUsernameGetsLengthMessageOnly(t *testing.T) {
	_, f := load(t)
	v := NewFieldValidator(DefaultMessages())
	dom.SetValue(field(f, "username"), "abc")

	res := v.Validate(f)
	msg, ok := Annotation(field(f, "username"))
	require.True(t, ok)
	assert.Equal(t, DefaultMessages().UsernameLength, msg)
	assert.Equal(t, DefaultMessages().UsernameLength, errorsByName(res)["username"])
}

func TestLengthCountsCharactersNotBytes(t *testing.T) {
	_, f := load(t)
	v := NewFieldValidator(DefaultMessages())
	dom.SetValue(field(f, "username"), "홍길동님")

	v.Validate(f)
	_, ok := Annotation(field(f, "username"))
	assert.False(t, ok)
}

func TestValidateTwiceKeepsSingleAnnotation(t *testing.T) {
	_, f := load(t)
	v := NewFieldValidator(DefaultMessages())

	v.Validate(f)
	v.Validate(f)

	assert.Equal(t, 1, AnnotationCount(field(f, "title")))
	assert.Equal(t, 1, AnnotationCount(field(f, "username")))
}

func TestValidResubmissionClearsStaleAnnotations(t *testing.T) {
	_, f := load(t)
	v := NewFieldValidator(DefaultMessages())
	require.False(t, v.Validate(f).Valid)

	dom.SetValue(field(f, "username"), "keon")
	dom.SetValue(field(f, "password"), "secret")
	dom.SetValue(field(f, "title"), "Buy milk")

	res := v.Validate(f)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	for _, name := range []string{"username", "password", "title"} {
		assert.Equal(t, 0, AnnotationCount(field(f, name)), name)
		assert.False(t, dom.ContainsClass(field(f, name), InvalidClass), name)
	}
}

func TestCustomMessagesFallBackToDefaults(t *testing.T) {
	_, f := load(t)
	v := NewFieldValidator(Messages{Required: "required!"})

	res := v.Validate(f)
	got := errorsByName(res)
	assert.Equal(t, "required!", got["title"])
	assert.Equal(t, DefaultMessages().PasswordLength, got["password"])
}

func TestWithRulesReplacesDefaults(t *testing.T) {
	_, f := load(t)
	v := NewFieldValidator(DefaultMessages(), WithRules(
		NamedMinLength("title", 10, "too short"),
	))

	res := v.Validate(f)
	assert.Equal(t, map[string]string{"title": "too short"}, errorsByName(res))
}

func TestAnnotateClearsPreviousFeedback(t *testing.T) {
	input := dom.Elem("input", dom.A("name", "x"))
	wrapper := dom.Div(input)

	Annotate(input, "first")
	Annotate(input, "second")

	assert.Len(t, dom.Children(wrapper), 2)
	msg, _ := Annotation(input)
	assert.Equal(t, "second", msg)

	assert.True(t, ClearAnnotation(input))
	assert.False(t, ClearAnnotation(input))
	assert.Len(t, dom.Children(wrapper), 1)
}

func TestValidatorFuncs(t *testing.T) {
	assert.Error(t, Required("").Validate("  "))
	assert.NoError(t, Required("").Validate("x"))
	assert.Error(t, MinLength(4, "").Validate(""))
	assert.NoError(t, MinLength(4, "").Validate("abcd"))

	err := MinLength(3, "").Validate("a")
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Must be at least 3 characters", ve.Message)
}

func TestRequiredCheckboxWithoutValuePasses(t *testing.T) {
	f := dom.Elem("form",
		dom.Elem("input", dom.Type("checkbox"), dom.A("name", "agree"), dom.A("required", "")),
	)
	res := NewFieldValidator(DefaultMessages()).Validate(f)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}
