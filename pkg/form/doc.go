// Package form validates server-rendered forms before they are submitted.
//
// A FieldValidator walks a form's input, select and textarea controls and
// applies its rules: a required check for fields with the required
// attribute, and minimum-length checks for the username and password
// inputs. Failing fields are annotated in place Bootstrap-style:
//
//	<input name="title" required class="is-invalid">
//	<div class="invalid-feedback">이 필드는 필수입니다.</div>
//
// Annotation is idempotent. Running Validate twice on the same input leaves
// the same single annotation, and fields that pass have any earlier
// annotation removed.
//
// Usage:
//
//	v := form.NewFieldValidator(form.DefaultMessages())
//	if res := v.Validate(formNode); !res.Valid {
//	    // suppress submission
//	}
package form
