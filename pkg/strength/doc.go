// Package strength scores candidate passwords for the live strength meter shown
// on the registration and password reset forms.
//
// Evaluate runs eight independent rules over the password, adds up the points
// of the rules that pass and buckets the total into a Level. Nothing is cached:
// every call recomputes the assessment from scratch, so callers can invoke it on
// every keystroke and simply replace the previous result.
package strength
