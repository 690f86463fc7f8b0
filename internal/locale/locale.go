// Package locale holds the Bangla strings shown to readers and operators.
package locale

import "strings"

const (
	SiteName = "স্কুল বুকস"

	LiveData    = "লাইভ ডাটা"
	OfflineData = "অফলাইন/ডেমো"

	WrongPassword   = "ভুল পাসওয়ার্ড"
	SaveSuccess     = "সফলভাবে পাঠানো হয়েছে! রিফ্রেশ হচ্ছে..."
	SaveError       = "সমস্যা হয়েছে। নেটওয়ার্ক চেক করুন।"
	DeleteSuccess   = "বই মুছে ফেলা হয়েছে। রিফ্রেশ হচ্ছে..."
	DeleteError     = "মুছে ফেলতে সমস্যা হয়েছে।"
	SettingsSaved   = "সেটিংস আপডেট করা হয়েছে।"
	UploadProgress  = "আপলোড হচ্ছে..."
	UploadDone      = "আপলোড সম্পন্ন! রিফ্রেশ হচ্ছে..."
	UploadFailed    = "আপলোড ব্যর্থ।"
	UploadBusy      = "আপলোড ইতিমধ্যে চলছে।"
	RefreshStarted  = "রিফ্রেশ হচ্ছে..."
	DataRefreshing  = "ডাটা রিফ্রেশ হচ্ছে..."
	UploadStarting  = "আপলোড শুরু হচ্ছে..."
	NoEndpoint      = "সেটিংস থেকে API URL সেট করুন।"
	BadSettings     = "সেটিংস ঠিক নেই।"
	MissingFields   = "বইয়ের নাম, বিষয়, শ্রেণী ও PDF লিংক আবশ্যক।"
	ReaderLoading   = "বইটি লোড করা হচ্ছে..."
	ReaderErrTitle  = "সমস্যা হয়েছে"
	ReaderErrBody   = "এই বইটি কাস্টম রিডারে লোড করা যাচ্ছে না। দয়া করে ড্রাইভ ভিউয়ার ব্যবহার করুন।"
	OpenDriveViewer = "ড্রাইভ ভিউয়ারে খুলুন"
	EmptyClass      = "এই শ্রেণীর জন্য বর্তমানে কোনো পাঠ্যবই আমাদের সংগ্রহে নেই। শীঘ্রই যুক্ত করা হবে।"
	NoDescription   = "এই বইটির জন্য কোনো বিস্তারিত বিবরণ নেই।"
	NoResults       = "কোনো বই পাওয়া যায়নি।"
	BookNotFound    = "বইটি পাওয়া যায়নি।"
)

// Formats taking a book title or a count
const (
	EditMode      = "এডিট মোড: \"%s\""
	DeleteConfirm = "সতর্কতা: \"%s\" বইটি স্থায়ীভাবে মুছে ফেলা হবে।"
	SeedConfirm   = "শিটে %sটি ডেমো বই যুক্ত হবে। আপনি কি নিশ্চিত?"
	BookCount     = "মোট %s টি বই পাওয়া গেছে"
)

var bnDigits = []rune("০১২৩৪৫৬৭৮৯")

// Digits replaces ASCII digits in s with Bangla digits
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(bnDigits[r-'0'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
