// Package challenge is a client for live CAPTCHA challenge pages.
//
// A round trip is FetchPage, FetchImage, solve, then Submit. The page is
// HTML containing a JPEG <img> and a form with the hidden fields "amzn" and
// "amzn-r"; the answer goes back as "field-keywords" in a GET request. The
// site redirects to its root when the answer is accepted.
package challenge
